package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRunConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
database: runs.db
timeout: 30s
checks:
  - network: path
    size: 10
  - network: fault-tolerant
    monolithic: true
`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "runs.db", cfg.Database)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	require.Len(t, cfg.Checks, 2)
	assert.Equal(t, "path", cfg.Checks[0].Network)
	assert.Equal(t, 10, cfg.Checks[0].Size)
	assert.False(t, cfg.Checks[0].Monolithic)
	assert.True(t, cfg.Checks[1].Monolithic)

	// Omitted sizes get the default.
	assert.Equal(t, defaultSize, cfg.Checks[1].Size)
}

func TestLoadRunConfig_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no checks", "database: runs.db\n", "no checks declared"},
		{"missing network", "checks:\n  - size: 3\n", "has no network"},
		{"negative size", "checks:\n  - network: path\n    size: -1\n", "negative size"},
		{"negative timeout", "timeout: -5s\nchecks:\n  - network: path\n", "negative timeout"},
		{"unknown field", "checks:\n  - network: path\n    solver: z3\n", "solver"},
		{"malformed yaml", "checks: [", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, tc.content))
			require.Error(t, err)
			if tc.wantErr != "" {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
