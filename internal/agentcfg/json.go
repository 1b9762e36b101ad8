package agentcfg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tailscale/hujson"
)

const (
	jsonPortPtr    = "/gateway/port"
	jsonPairingPtr = "/gateway/require_pairing"
)

// PatchGatewayJSON applies the same contract as PatchGatewayTOML to a JSON
// (or JSONC) config: existing gateway.port and gateway.require_pairing
// values are replaced, absent ones are left absent.
func PatchGatewayJSON(path string, s GatewaySettings) (bool, error) {
	data, err := readIfExists(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if data == nil {
		return false, nil
	}

	root, err := hujson.Parse(data)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	changed := false
	replace := func(ptr, want string) error {
		v := root.Find(ptr)
		if v == nil {
			return nil
		}
		lit, ok := v.Value.(hujson.Literal)
		if !ok || strings.TrimSpace(string(lit)) == want {
			return nil
		}
		patch := fmt.Sprintf(`[{"op":"replace","path":%q,"value":%s}]`, ptr, want)
		if err := root.Patch([]byte(patch)); err != nil {
			return fmt.Errorf("patching %s: %w", ptr, err)
		}
		changed = true
		return nil
	}

	if err := replace(jsonPortPtr, strconv.Itoa(s.Port)); err != nil {
		return false, err
	}
	if v := root.Find(jsonPairingPtr); v != nil {
		if lit, ok := v.Value.(hujson.Literal); ok && (lit.Kind() == 't' || lit.Kind() == 'f') {
			if err := replace(jsonPairingPtr, strconv.FormatBool(s.RequirePairing)); err != nil {
				return false, err
			}
		}
	}

	if !changed {
		return false, nil
	}
	if err := writeKeepingMode(path, root.Pack()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// ReadGatewayJSON extracts the managed fields from the "gateway" object.
func ReadGatewayJSON(path string) (GatewaySettings, bool, error) {
	data, err := readIfExists(path)
	if err != nil {
		return GatewaySettings{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if data == nil {
		return GatewaySettings{}, false, nil
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return GatewaySettings{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(std, &doc); err != nil {
		return GatewaySettings{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	section, ok := doc["gateway"].(map[string]any)
	if !ok {
		return GatewaySettings{}, false, nil
	}

	var s GatewaySettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return GatewaySettings{}, false, err
	}
	if err := dec.Decode(section); err != nil {
		return GatewaySettings{}, false, fmt.Errorf("decoding gateway section of %s: %w", path, err)
	}
	return s, true, nil
}
