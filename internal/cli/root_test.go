package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "projectboard", cmd.Use)

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{{"serve"}, {"migrate"}, {"migrate", "up"}, {"migrate", "down"}, {"migrate", "version"}} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	noMigrate := serve.Flags().Lookup("no-migrate")
	require.NotNil(t, noMigrate)
	assert.Equal(t, "false", noMigrate.DefValue)

	down, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	steps := down.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "1", steps.DefValue)
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))

	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestMigrateLifecycle(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "cli.db3"))
	t.Setenv("LOG_LEVEL", "error")

	assert.Equal(t, "no migrations applied\n", runCLI(t, "migrate", "version"))

	runCLI(t, "migrate", "up")
	assert.Equal(t, "2\n", runCLI(t, "migrate", "version"))

	runCLI(t, "migrate", "down")
	assert.Equal(t, "1\n", runCLI(t, "migrate", "version"))

	runCLI(t, "migrate", "down", "--steps", "0")
	assert.Equal(t, "no migrations applied\n", runCLI(t, "migrate", "version"))
}
