package agentcfg

import (
	"fmt"
	"strconv"
	"strings"
)

const gatewayHeader = "[gateway]"

// PatchGatewayTOML rewrites the `port` and `require_pairing` lines inside
// the [gateway] section of a TOML file. Lines that are absent are not added.
// A missing file is a no-op. Returns true if the file was rewritten.
func PatchGatewayTOML(path string, s GatewaySettings) (bool, error) {
	data, err := readIfExists(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if data == nil {
		return false, nil
	}

	patched, changed := patchTOML(string(data), s)
	if !changed {
		return false, nil
	}

	if err := writeKeepingMode(path, []byte(patched)); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// ReadGatewayTOML extracts the managed fields from the [gateway] section.
func ReadGatewayTOML(path string) (GatewaySettings, bool, error) {
	data, err := readIfExists(path)
	if err != nil {
		return GatewaySettings{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if data == nil {
		return GatewaySettings{}, false, nil
	}

	var (
		s     GatewaySettings
		found bool
	)
	scanGateway(string(data), func(key, value string) {
		switch key {
		case "port":
			if n, err := strconv.Atoi(value); err == nil {
				s.Port = n
			}
		case "require_pairing":
			if b, err := strconv.ParseBool(value); err == nil {
				s.RequirePairing = b
			}
		}
	}, func() { found = true })
	return s, found, nil
}

func patchTOML(content string, s GatewaySettings) (string, bool) {
	wantPort := strconv.Itoa(s.Port)
	wantPairing := strconv.FormatBool(s.RequirePairing)

	lines := strings.SplitAfter(content, "\n")
	inGateway := false
	changed := false

	open := ""

	for i, raw := range lines {
		body, eol := splitEOL(raw)

		inString := open != ""
		open = multilineState(body, open)
		if inString {
			continue
		}

		if header, ok := sectionHeader(body); ok {
			inGateway = header == gatewayHeader
			continue
		}
		if !inGateway {
			continue
		}

		key, value, ok := keyValue(body)
		if !ok {
			continue
		}

		var want string
		switch key {
		case "port":
			want = wantPort
		case "require_pairing":
			if value != "true" && value != "false" {
				continue
			}
			want = wantPairing
		default:
			continue
		}
		if value == want {
			continue
		}

		lines[i] = replaceValue(body, want) + eol
		changed = true
	}

	return strings.Join(lines, ""), changed
}

// scanGateway calls fn for every key/value line inside [gateway] and
// onHeader when the section header itself is seen.
func scanGateway(content string, fn func(key, value string), onHeader func()) {
	inGateway := false
	open := ""
	for _, raw := range strings.SplitAfter(content, "\n") {
		body, _ := splitEOL(raw)
		inString := open != ""
		open = multilineState(body, open)
		if inString {
			continue
		}
		if header, ok := sectionHeader(body); ok {
			inGateway = header == gatewayHeader
			if inGateway {
				onHeader()
			}
			continue
		}
		if !inGateway {
			continue
		}
		if key, value, ok := keyValue(body); ok {
			fn(key, value)
		}
	}
}

func splitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

// sectionHeader reports whether the line is a table header, returning it
// without surrounding whitespace or trailing comment.
func sectionHeader(body string) (string, bool) {
	t := strings.TrimSpace(stripComment(body))
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		return "", false
	}
	return strings.Join(strings.Fields(t), ""), true
}

func keyValue(body string) (key, value string, ok bool) {
	t := strings.TrimSpace(body)
	if t == "" || strings.HasPrefix(t, "#") {
		return "", "", false
	}
	eq := strings.Index(body, "=")
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(body[:eq])
	value = strings.TrimSpace(stripComment(body[eq+1:]))
	return key, value, true
}

// replaceValue swaps the value after "=" keeping indentation, spacing and
// any trailing comment.
func replaceValue(body, value string) string {
	eq := strings.Index(body, "=")
	rest := body[eq+1:]

	trimmedLeft := strings.TrimLeft(rest, " \t")
	lead := rest[:len(rest)-len(trimmedLeft)]

	old := stripComment(trimmedLeft)
	oldTrimmed := strings.TrimRight(old, " \t")
	tail := trimmedLeft[len(oldTrimmed):]

	return body[:eq+1] + lead + value + tail
}

// multilineState returns the triple-quote delimiter still open at the end
// of line, given the one open at its start. Lines that start inside a
// multi-line string are never parsed as keys or headers.
func multilineState(line, open string) string {
	for i := 0; i < len(line); {
		if open != "" {
			j := strings.Index(line[i:], open)
			if j < 0 {
				return open
			}
			i += j + 3
			open = ""
			continue
		}
		rest := line[i:]
		switch {
		case strings.HasPrefix(rest, `"""`), strings.HasPrefix(rest, "'''"):
			open = rest[:3]
			i += 3
		case rest[0] == '#':
			return ""
		case rest[0] == '"' || rest[0] == '\'':
			j := strings.IndexByte(rest[1:], rest[0])
			if j < 0 {
				return ""
			}
			i += j + 2
		default:
			i++
		}
	}
	return open
}

// stripComment drops a trailing "#" comment outside double quotes.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return s[:i]
			}
		}
	}
	return s
}
