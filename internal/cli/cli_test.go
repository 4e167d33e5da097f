package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirmirror/pkg/config"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

// execute runs the CLI with args against an empty config file
func execute(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  quiet: true\n"), 0644))

	root := &cobra.Command{Use: "dirmirror", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(NewRunCommand(), NewOnceCommand(), NewCompareCommand())
	root.SetArgs(append([]string{"--config", configPath}, args...))

	return root.ExecuteContext(ctx)
}

func TestOnceCommand(t *testing.T) {
	t.Run("MirrorsIntoNewDestination", func(t *testing.T) {
		src := t.TempDir()
		dst := filepath.Join(t.TempDir(), "mirror")
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0644))

		require.NoError(t, execute(t, context.Background(), "once", "-s", src, "-d", dst, "--no-log"))

		data, err := os.ReadFile(filepath.Join(dst, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("MissingSource", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "absent")
		dst := t.TempDir()

		err := execute(t, context.Background(), "once", "-s", src, "-d", dst, "--no-log")
		assert.True(t, errors.Is(err, sync.ErrSourceMissing))
	})

	t.Run("WritesLogFile", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		logPath := filepath.Join(t.TempDir(), "mirror.log")
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0644))

		require.NoError(t, execute(t, context.Background(), "once", "-s", src, "-d", dst, "--log-file", logPath))

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "CREATE: '"+filepath.Join(src, "a.txt")+"'")
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("RequiresInterval", func(t *testing.T) {
		err := execute(t, context.Background(), "run", "-s", t.TempDir(), "-d", t.TempDir(), "--no-log")
		assert.Error(t, err)
	})

	t.Run("RejectsNonPositiveInterval", func(t *testing.T) {
		err := execute(t, context.Background(), "run", "-s", t.TempDir(), "-d", t.TempDir(), "-i", "0", "--no-log")
		assert.ErrorContains(t, err, "interval must be a positive number")
	})

	t.Run("RejectsOverflowingInterval", func(t *testing.T) {
		err := execute(t, context.Background(), "run", "-s", t.TempDir(), "-d", t.TempDir(), "-i", "9300000000", "--no-log")
		assert.ErrorContains(t, err, "interval too large")
	})

	t.Run("CancelledIsCleanExit", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := execute(t, ctx, "run", "-s", t.TempDir(), "-d", t.TempDir(), "-i", "1", "--no-log")
		assert.NoError(t, err)
	})

	t.Run("NestedPaths", func(t *testing.T) {
		src := t.TempDir()
		err := execute(t, context.Background(), "run", "-s", src, "-d", filepath.Join(src, "inner"), "-i", "1", "--no-log")
		assert.True(t, errors.Is(err, sync.ErrNestedPaths))
	})
}

func TestCompareCommand(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	report := filepath.Join(t.TempDir(), "diff.json")
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0644))

	require.NoError(t, execute(t, context.Background(), "compare", "-s", src, "-d", dst,
		"--no-log", "--diff-report", report, "--diff-format", "json"))

	_, err := os.Stat(filepath.Join(dst, "a.txt"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome": "planned"`)
}

func TestVersionCommand(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewVersionCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(nil)

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "dirmirror "+Version)
		assert.Contains(t, out.String(), runtime.Version())
	})

	t.Run("Short", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewVersionCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--short"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, Version+"\n", out.String())
	})
}

func TestCreateLogger(t *testing.T) {
	var buf bytes.Buffer
	stderr = &buf
	t.Cleanup(func() {
		stderr = os.Stderr
		globalFlags = GlobalFlags{}
	})

	cfg := config.Default()
	cfg.Logging.Enabled = false
	ctx := context.Background()

	globalFlags.Verbose = false
	logger, err := createLogger(cfg)
	require.NoError(t, err)
	logger.Info(ctx, "dropped", nil)
	assert.Empty(t, buf.String())

	globalFlags.Verbose = true
	logger, err = createLogger(cfg)
	require.NoError(t, err)
	logger.Debug(ctx, "shown", logging.Fields{"path": "/src"})
	assert.Contains(t, buf.String(), "[DEBUG] shown")
}
