package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"clawdock": run,
	}))
}

func TestScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("scripts use POSIX shell fake agents")
	}
	testscript.Run(t, testscript.Params{
		Dir:                 filepath.Join("testdata", "script"),
		RequireExplicitExec: true,
		Setup: func(e *testscript.Env) error {
			// ~/.clawdock and ~/.zeroclaw both land inside the work dir
			e.Vars = append(e.Vars, "HOME="+e.WorkDir, "CLAWDOCK_LOG_LEVEL=warn")
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			// file-contains asserts that a file contains (or doesn't contain) a substring.
			// Usage: [!] file-contains <path> <substring>
			"file-contains": cmdFileContains,

			// file-mode asserts a file's permission bits.
			// Usage: file-mode <path> <octal>
			"file-mode": cmdFileMode,
		},
	})
}

func cmdFileContains(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 2 {
		ts.Fatalf("usage: file-contains <path> <substring>")
	}
	data, err := os.ReadFile(ts.MkAbs(args[0]))
	if err != nil {
		ts.Fatalf("reading %s: %v", args[0], err)
	}

	contains := strings.Contains(string(data), args[1])
	if neg && contains {
		ts.Fatalf("file %s contains %q (expected not to)", args[0], args[1])
	}
	if !neg && !contains {
		ts.Fatalf("file %s does not contain %q\nContent:\n%s", args[0], args[1], data)
	}
}

func cmdFileMode(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("file-mode does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: file-mode <path> <octal>")
	}
	info, err := os.Stat(ts.MkAbs(args[0]))
	if err != nil {
		ts.Fatalf("%s: %v", args[0], err)
	}
	want, err := strconv.ParseUint(args[1], 8, 32)
	if err != nil {
		ts.Fatalf("invalid mode %q: %v", args[1], err)
	}
	if got := info.Mode().Perm(); got != os.FileMode(want) {
		ts.Fatalf("%s has mode %#o, want %#o", args[0], got, want)
	}
}
