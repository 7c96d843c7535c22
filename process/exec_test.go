package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Log struct {
		Level string `help:"日志级别" default:"info"`
	}
	Strict bool     `help:"严格模式" default:"false"`
	Tags   []string `help:"标签" default:"a,b"`
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	outfile := filepath.Join(dir, DefaultCfgFilename)

	var saved testConfig
	setup := &cobra.Command{Use: "setup", Annotations: map[string]string{"type": "setup"}}
	setup.Flags().String("config-dir", dir, "")
	Bind(setup, &saved)

	require.NoError(t, SaveConfig(setup, outfile, map[string]interface{}{
		"log.level": "warn",
		"strict":    true,
	}))

	data, err := os.ReadFile(outfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: warn")
	assert.Contains(t, string(data), "strict: true")
	assert.NotContains(t, string(data), "config-dir")

	var loaded testConfig
	ran := false
	run := &cobra.Command{Use: "run", RunE: func(cmd *cobra.Command, args []string) error {
		ran = true
		return nil
	}}
	run.Flags().String("config-dir", dir, "")
	Bind(run, &loaded)

	require.NoError(t, Prepare(run, ExecOptions{}))
	run.SetArgs([]string{})
	require.NoError(t, run.Execute())

	require.True(t, ran)
	assert.Equal(t, "warn", loaded.Log.Level)
	assert.True(t, loaded.Strict)
}

func TestPrepareRejectsRun(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.AddCommand(&cobra.Command{Use: "bad", Run: func(*cobra.Command, []string) {}})
	require.Error(t, Prepare(root, ExecOptions{}))
}

func TestLoadConfigMissingFile(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().String("config-dir", t.TempDir(), "")
	vip, err := Viper(cmd)
	require.NoError(t, err)
	require.Empty(t, vip.ConfigFileUsed())
}

func TestNest(t *testing.T) {
	require.Equal(t, map[string]interface{}{
		"strict": true,
		"log": map[string]interface{}{
			"level": "info",
			"file":  map[string]interface{}{"max-size": 1},
		},
	}, nest(map[string]interface{}{
		"strict":            true,
		"log.level":         "info",
		"log.file.max-size": 1,
	}))
}

func TestAtomicWriteFile(t *testing.T) {
	outfile := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, atomicWriteFile(outfile, []byte("a: 1\n"), 0o600))
	require.NoError(t, atomicWriteFile(outfile, []byte("a: 2\n"), 0o600))

	data, err := os.ReadFile(outfile)
	require.NoError(t, err)
	require.Equal(t, "a: 2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(outfile))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
