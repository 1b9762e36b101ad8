package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/soyeahso/clawdock/internal/agent"
	"github.com/soyeahso/clawdock/internal/agentcfg"
	"github.com/soyeahso/clawdock/internal/config"
	"github.com/soyeahso/clawdock/internal/hooks"
	"github.com/soyeahso/clawdock/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onboardScript mimics `zeroclaw onboard`: it writes a config with a
// pairing-enabled gateway on a different port plus one workspace template.
const onboardScript = `#!/bin/sh
echo "$*" >> "$HOME/calls.log"
[ "$1" = "onboard" ] || exit 0
root="$HOME/.zeroclaw"
mkdir -p "$root/workspace/memory"
printf 'default_provider = "bailian"\n\n[gateway]\nport = 3000\nrequire_pairing = true\n\n[memory]\nbackend = "sqlite"\n' > "$root/config.toml"
chmod 644 "$root/config.toml"
echo "# Memory" > "$root/workspace/MEMORY.md"
`

const onboardCall = "onboard --provider bailian --model qwen3-max-2026-01-23 --memory sqlite\n"

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Emit(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fixture struct {
	home      string
	agent     config.AgentPaths
	resources config.ResourcePaths
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	require.NoError(t, os.MkdirAll(home, 0o755))

	res, err := config.ResolveResourcePaths(filepath.Join(base, "resources"), "zeroclaw")
	require.NoError(t, err)

	return fixture{
		home:      home,
		agent:     config.NewAgentPaths(filepath.Join(home, ".zeroclaw"), "zeroclaw", "config.toml"),
		resources: res,
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake agent is a POSIX shell script")
	}
}

func writeFile(t *testing.T, p, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), mode))
}

// withBundle populates the resource bundle with the fake binary, templates
// and a skills tree.
func (f fixture) withBundle(t *testing.T) fixture {
	t.Helper()
	skipOnWindows(t)
	writeFile(t, f.resources.Bin, onboardScript, 0o644)
	writeFile(t, filepath.Join(f.resources.Workspace, "MEMORY.md"), "# bundled memory\n", 0o644)
	writeFile(t, filepath.Join(f.resources.Workspace, "USER.md"), "# bundled user\n", 0o644)
	writeFile(t, filepath.Join(f.resources.Workspace, "SOUL.md"), "# bundled soul\n", 0o644)
	writeFile(t, filepath.Join(f.resources.Skills, "weather", "SKILL.md"), "weather skill\n", 0o644)
	return f
}

func (f fixture) bootstrapper(rec hooks.Emitter) *Bootstrapper {
	return New(Options{
		Agent:     f.agent,
		Resources: f.resources,
		Onboard:   agent.OnboardOptions{Provider: "bailian", Model: "qwen3-max-2026-01-23", Memory: "sqlite"},
		Gateway:   agentcfg.DefaultSettings(),
	}, rec, logging.New(nil, "silent"))
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestCheckInitialized(t *testing.T) {
	f := newFixture(t)
	b := f.bootstrapper(nil)

	ok, err := b.CheckInitialized()
	require.NoError(t, err)
	assert.False(t, ok)

	writeFile(t, f.agent.Config, "", 0o600)

	ok, err = b.CheckInitialized()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitialize_FullInstall(t *testing.T) {
	f := newFixture(t).withBundle(t)
	rec := &recorder{}

	msg, err := f.bootstrapper(rec).Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CompletedMessage, msg)

	info, err := os.Stat(f.agent.Bin)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = os.Stat(f.agent.Config)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, onboardCall, readFile(t, filepath.Join(f.home, "calls.log")))

	cfg := readFile(t, f.agent.Config)
	assert.Contains(t, cfg, "port = 18789\n")
	assert.Contains(t, cfg, "require_pairing = false\n")
	assert.Contains(t, cfg, "backend = \"sqlite\"\n")

	// onboard wrote MEMORY.md; the bundle fills in the rest
	assert.Equal(t, "# Memory\n", readFile(t, f.agent.Memory))
	assert.Equal(t, "# bundled user\n", readFile(t, f.agent.User))
	assert.Equal(t, "# bundled soul\n", readFile(t, f.agent.Soul))
	assert.Equal(t, "weather skill\n", readFile(t, filepath.Join(f.agent.Skills, "weather", "SKILL.md")))

	assert.Equal(t, []string{
		hooks.EventInitStart,
		hooks.EventBinaryInstalled,
		hooks.EventOnboarded,
		hooks.EventWorkspaceSeeded,
		hooks.EventConfigPatched,
		hooks.EventInitComplete,
	}, rec.Events())
}

func TestInitialize_Idempotent(t *testing.T) {
	f := newFixture(t).withBundle(t)
	ctx := context.Background()

	_, err := f.bootstrapper(nil).Initialize(ctx)
	require.NoError(t, err)

	skill := filepath.Join(f.agent.Skills, "weather", "SKILL.md")
	require.NoError(t, os.WriteFile(f.agent.Memory, []byte("# Custom Memory"), 0o644))
	require.NoError(t, os.WriteFile(skill, []byte("mine"), 0o644))
	cfgBefore := readFile(t, f.agent.Config)

	rec := &recorder{}
	_, err = f.bootstrapper(rec).Initialize(ctx)
	require.NoError(t, err)

	assert.Equal(t, "# Custom Memory", readFile(t, f.agent.Memory))
	assert.Equal(t, "mine", readFile(t, skill))
	assert.Equal(t, cfgBefore, readFile(t, f.agent.Config))
	assert.Equal(t, onboardCall, readFile(t, filepath.Join(f.home, "calls.log")), "onboard should run once")
	assert.Equal(t, []string{hooks.EventInitStart, hooks.EventInitComplete}, rec.Events())
}

func TestInitialize_NoResourcesNoWrites(t *testing.T) {
	f := newFixture(t)

	msg, err := f.bootstrapper(nil).Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CompletedMessage, msg)

	_, err = os.Stat(f.agent.Root)
	assert.True(t, os.IsNotExist(err), "agent root should not be created")
}

func TestInitialize_OnboardFailure(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	writeFile(t, f.resources.Bin, "#!/bin/sh\necho 'no api key' >&2\nexit 3\n", 0o755)

	rec := &recorder{}
	_, err := f.bootstrapper(rec).Initialize(context.Background())
	require.Error(t, err)

	var ce *agent.CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.ExitCode)
	assert.Contains(t, err.Error(), "no api key")

	assert.Equal(t, []string{hooks.EventInitStart, hooks.EventBinaryInstalled, hooks.EventInitFailed}, rec.Events())
}

func TestInitialize_ExistingConfigSkipsOnboard(t *testing.T) {
	f := newFixture(t).withBundle(t)
	original := "[gateway]\nport = 18789\n"
	writeFile(t, f.agent.Config, original, 0o640)

	_, err := f.bootstrapper(nil).Initialize(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(f.home, "calls.log"))
	assert.True(t, os.IsNotExist(err), "onboard should not run")

	info, err := os.Stat(f.agent.Config)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.Equal(t, original, readFile(t, f.agent.Config))
}

func TestAgentHome(t *testing.T) {
	home, ok := agentHome(filepath.Join("/home", "u", ".zeroclaw"))
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/home", "u"), home)

	_, ok = agentHome(filepath.Join("/opt", "agent"))
	assert.False(t, ok)
}
