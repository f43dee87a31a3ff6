package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/ssargent/gdstxt/pkg/api"
	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/di"
	"github.com/ssargent/gdstxt/pkg/metrics"
	"github.com/ssargent/gdstxt/pkg/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `HEADER:600
BGNLIB:2024 1 1 0 0 0 2024 1 1 0 0 0
LIBNAME:DEMO.DB
UNITS:0.001 1e-09
BGNSTR:2024 1 1 0 0 0 2024 1 1 0 0 0
STRNAME:TOP
BOUNDARY
LAYER:1
DATATYPE:0
XY:0 0 1000 0 1000 1000 0 1000 0 0
ENDEL
ENDSTR
ENDLIB
`

// runCLI executes a fresh command tree with an isolated home directory
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	if container == nil {
		SetContainer(di.NewContainer())
	}

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestRootCommand_RoundTrip(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	txt := filepath.Join(dir, "in.txt")
	gds := filepath.Join(dir, "out.gds")
	back := filepath.Join(dir, "back.txt")
	writeFile(t, txt, sampleText)

	_, _, err := runCLI(t, "-t", "-i", txt, "-o", gds, "--log-level", "error")
	require.NoError(t, err)

	bin, err := os.ReadFile(gds)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x06, 0x00, 0x02, 0x02, 0x58}, bin[:6])
	assert.Equal(t, []byte{0x00, 0x04, 0x04, 0x00}, bin[len(bin)-4:])

	_, _, err = runCLI(t, "--gds2txt", "--input", gds, "--output", back, "--workers", "3")
	require.NoError(t, err)

	text, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, sampleText, string(text))

	assertUnlocked(t, gds)
	assertUnlocked(t, back)
}

// assertUnlocked checks that the lock file next to path is left behind and free
func assertUnlocked(t *testing.T, path string) {
	t.Helper()
	require.FileExists(t, lockPath(path))
	lock := flock.New(lockPath(path))
	locked, err := lock.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, lock.Unlock())
}

func TestRootCommand_Gzip(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	txt := filepath.Join(dir, "in.txt")
	gz := filepath.Join(dir, "out.gds.gz")
	back := filepath.Join(dir, "back.txt.gz")
	writeFile(t, txt, sampleText)

	_, _, err := runCLI(t, "-t", "-i", txt, "-o", gz)
	require.NoError(t, err)

	raw, err := os.ReadFile(gz)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])

	_, _, err = runCLI(t, "-g", "-i", gz, "-o", back)
	require.NoError(t, err)

	in, err := openInput(back)
	require.NoError(t, err)
	defer in.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(in)
	require.NoError(t, err)
	assert.Equal(t, sampleText, buf.String())
}

func TestRootCommand_Misuse(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.gds")
	writeFile(t, in, sampleText)

	testCases := []struct {
		name string
		args []string
	}{
		{"both directions", []string{"-g", "-t", "-i", in, "-o", out}},
		{"no direction", []string{"-i", in, "-o", out}},
		{"missing output", []string{"-t", "-i", in}},
		{"missing input", []string{"-t", "-o", out}},
		{"stray argument", []string{"-t", "-i", in, "-o", out, "extra"}},
		{"missing input file", []string{"-t", "-i", filepath.Join(dir, "nope.txt"), "-o", out}},
		{"same file", []string{"-t", "-i", in, "-o", in}},
		{"bad log level", []string{"-t", "-i", in, "-o", out, "--log-level", "loud"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, tc.args...)
			assert.Error(t, err)
			assert.Contains(t, stderr, "Error:")
			assert.NoFileExists(t, out)
		})
	}
}

func TestRootCommand_FailedConversionLeavesNoOutput(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.gds")
	writeFile(t, in, "HEADER:5\nNOTATAG:1\n")

	_, stderr, err := runCLI(t, "-t", "-i", in, "-o", out)
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown tag name")
	assert.NoFileExists(t, out)
	assertUnlocked(t, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"in.txt", "out.gds.lock"}, names, "temporary output must be removed")
}

func TestRootCommand_ContinueOnError(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.gds")
	writeFile(t, in, "HEADER:5\nNOTATAG:1\nENDLIB\n")

	_, stderr, err := runCLI(t, "-t", "-i", in, "-o", out, "--continue-on-error")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 records skipped")

	bin, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, bin, 10)
}

func TestConvertFile_Locked(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.gds")
	writeFile(t, in, sampleText)

	held := flock.New(lockPath(out))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	_, err = convertFile(context.Background(), convert.New(tags.Default()), convert.TextToGDS, in, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another process")
	assert.NoFileExists(t, out)
	require.NoError(t, held.Unlock())

	_, err = convertFile(context.Background(), convert.New(tags.Default()), convert.TextToGDS, in, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
	assertUnlocked(t, out)
}

func TestConfigFileOverrides(t *testing.T) {
	SetContainer(di.NewContainer())
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "conversion:\n  workers: 2\n  continue_on_error: true\n")

	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.gds")
	writeFile(t, in, "HEADER:5\nNOTATAG:1\nENDLIB\n")

	_, _, err := runCLI(t, "-t", "-i", in, "-o", out, "--config", cfgPath, "--workers", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, container.Config().Conversion.Workers)
	assert.True(t, container.Config().Conversion.ContinueOnError)
}

func TestTagsCommand(t *testing.T) {
	SetContainer(di.NewContainer())

	stdout, _, err := runCLI(t, "tags")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TAG")
	assert.Regexp(t, `0x00\s+HEADER\s+int2`, stdout)
	assert.Regexp(t, `0x3B\s+LIBSECUR\s+int2`, stdout)

	stdout, _, err = runCLI(t, "tags", "--sort", "name")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(stdout), []byte("ANGLE")), bytes.Index([]byte(stdout), []byte("HEADER")))

	stdout, _, err = runCLI(t, "tags", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: HEADER")

	_, _, err = runCLI(t, "tags", "--sort", "type")
	assert.Error(t, err)
}

func TestTagsCommand_CustomTable(t *testing.T) {
	SetContainer(di.NewContainer())
	path := filepath.Join(t.TempDir(), "tags.yaml")
	writeFile(t, path, "tags:\n  - tag: 0x70\n    name: VENDORX\n    type: ascii\n")

	stdout, _, err := runCLI(t, "tags", "--tag-table", path)
	require.NoError(t, err)
	assert.Regexp(t, `0x70\s+VENDORX\s+ascii`, stdout)
	assert.NotContains(t, stdout, "HEADER")
}

func TestInitCommand(t *testing.T) {
	SetContainer(di.NewContainer())
	cfgPath := filepath.Join(t.TempDir(), "gdstxt.yaml")

	stdout, _, err := runCLI(t, "init", "--config", cfgPath, "--generate-api-key", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration written to")
	assert.Contains(t, stdout, "API key: ")
	assert.FileExists(t, cfgPath)

	stdout, _, err = runCLI(t, "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	stdout, _, err = runCLI(t, "init", "--config", cfgPath, "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration written to")
	assert.NotContains(t, stdout, "API key")
}

type fakeStarter struct{}

func (fakeStarter) Serve(ctx context.Context) error { return nil }

type fakeServerFactory struct {
	config api.ServerConfig
	store  api.ResultStore
}

func (f *fakeServerFactory) CreateServer(
	table *tags.Table,
	store api.ResultStore,
	config api.ServerConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...convert.Option,
) api.ServerStarter {
	f.config = config
	f.store = store
	return fakeStarter{}
}

func TestServeCommand(t *testing.T) {
	c := di.NewContainer()
	factory := &fakeServerFactory{}
	c.SetServerFactory(factory)
	SetContainer(c)

	dataDir := filepath.Join(t.TempDir(), "results")
	_, _, err := runCLI(t, "serve", "--port", "9100", "--bind", "0.0.0.0", "--api-key", "k", "--data-dir", dataDir)
	require.NoError(t, err)

	assert.Equal(t, api.ServerConfig{Port: 9100, Bind: "0.0.0.0", APIKey: "k", MaxBodyBytes: 64 << 20}, factory.config)
	assert.NotNil(t, factory.store)
	assert.DirExists(t, dataDir)

	_, _, err = runCLI(t, "serve", "--no-store")
	require.NoError(t, err)
	assert.Nil(t, factory.store)
	assert.Equal(t, 8080, factory.config.Port)

	_, _, err = runCLI(t, "serve", "--no-store", "--port", "0")
	assert.Error(t, err)
}
