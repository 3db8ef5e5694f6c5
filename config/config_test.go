package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"BOOKER_BASE_URL", "BOOKER_USERNAME", "BOOKER_PASSWORD", "BOOKER_TIMEOUT",
		"BOOKER_PARALLEL", "BOOKER_SEED", "BOOKER_SCENARIO_DIR", "BOOKER_STATUS_QUERY_TIMEOUT",
	} {
		if old, ok := os.LookupEnv(name); ok {
			os.Unsetenv(name)
			t.Cleanup(func() { os.Setenv(name, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(name) })
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.StatusQueryTimeout)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
base_url: https://booker.example.com/
username: admin
password: password123
timeout: 2s
parallel: 4
seed: 99
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "https://booker.example.com", cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "password123", cfg.Password)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, int64(99), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromProperties(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.properties", "base_url=http://localhost:3001\nusername=admin\npassword=secret\n")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.Credentials().Password)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "base_url: http://from-file\nusername: admin\npassword: x\n")
	os.Setenv("BOOKER_BASE_URL", "http://from-env")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Username)
}

func TestEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "BOOKER_BASE_URL=http://from-dotenv\nBOOKER_USERNAME=dotuser\nBOOKER_PASSWORD=dotpass\n")

	cfg, err := Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://from-dotenv", cfg.BaseURL)
	assert.Equal(t, "dotuser", cfg.Username)
	assert.Equal(t, "dotpass", cfg.Password)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load("", filepath.Join(t.TempDir(), "nonexistent.env"))
	assert.NoError(t, err)
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{BaseURL: "http://localhost", Username: "u", Password: "p", Timeout: time.Second, Parallel: 1}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Config){
		"no URL":      func(c *Config) { c.BaseURL = "" },
		"bad scheme":  func(c *Config) { c.BaseURL = "localhost:3001" },
		"no username": func(c *Config) { c.Username = "" },
		"no password": func(c *Config) { c.Password = "" },
		"no timeout":  func(c *Config) { c.Timeout = 0 },
		"no workers":  func(c *Config) { c.Parallel = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
