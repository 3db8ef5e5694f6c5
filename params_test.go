package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restfulbooker/booker-contract-tests/config"
	"github.com/restfulbooker/booker-contract-tests/framework"
)

func TestReadParams(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"booker-contract-tests",
		"-url", "http://localhost:3001", "-run", "auth", "-skip", "invalid",
		"-parallel", "3", "-seed", "7", "-timeout", "2s", "-password", "secret", "-debug"}))

	assert.Equal(t, "http://localhost:3001", p.baseURL)
	assert.True(t, p.filters.MustMatch.AnyMatch("auth/valid credentials get a token"))
	assert.True(t, p.filters.MustNotMatch.AnyMatch("auth/invalid credentials get no token"))
	assert.True(t, p.debug)
	assert.False(t, p.debugAll)

	cfg := config.Config{BaseURL: "http://from-config", Username: "admin", Password: "x", Timeout: time.Second, Parallel: 1}
	p.applyTo(&cfg)
	assert.Equal(t, "http://localhost:3001", cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.Parallel)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestUnsetFlagsDoNotOverrideConfig(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"booker-contract-tests"}))

	cfg := config.Config{BaseURL: "http://from-config", Parallel: 4, Timeout: 9 * time.Second}
	p.applyTo(&cfg)
	assert.Equal(t, "http://from-config", cfg.BaseURL)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, 9*time.Second, cfg.Timeout)
}

func TestReadParamsRejectsBadInput(t *testing.T) {
	var p commandParams
	assert.False(t, p.Read([]string{"booker-contract-tests", "-run", "("}))

	var p2 commandParams
	assert.False(t, p2.Read([]string{"booker-contract-tests", "extra"}))
}

func TestRerunCommand(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"booker-contract-tests", "-url", "http://localhost:3001",
		"-run", "auth", "-password", "secret"}))

	cmd := p.rerunCommand([]framework.TestID{
		{Path: []string{"get booking", "nonexistent booking is not found"}},
	})
	assert.Equal(t,
		`booker-contract-tests -url=http://localhost:3001 -run '^get booking/nonexistent booking is not found$'`,
		cmd)
}

func TestConsoleTestLogger(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := &ConsoleTestLogger{Out: &buf, DebugOutputOnFailure: true}
	id := framework.TestID{Path: []string{"ping", "service answers repeated pings"}}
	output := framework.CapturedOutput{{Time: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC), Message: "GET /ping"}}

	l.TestStarted(id)
	l.TestError(id, errors.New("first line\nsecond line"))
	l.TestFinished(id, true, output)
	l.TestSkipped(framework.TestID{Path: []string{"auth"}}, "excluded by filter parameters")

	assert.Equal(t, "[ping/service answers repeated pings]\n"+
		"  first line\n"+
		"  second line\n"+
		"  FAILED: ping/service answers repeated pings\n"+
		"    DEBUG [2025-08-01 12:00:00.000] GET /ping\n"+
		"  SKIPPED: auth (excluded by filter parameters)\n",
		buf.String())

	buf.Reset()
	l.TestFinished(id, false, output)
	assert.Equal(t, "  PASSED\n", buf.String())
}
