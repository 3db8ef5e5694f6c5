package bookertests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restfulbooker/booker-contract-tests/client"
	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/internal/fakebooker"
	"github.com/restfulbooker/booker-contract-tests/payload"
	"github.com/restfulbooker/booker-contract-tests/scenario"
)

func newRunner(t *testing.T, handler http.Handler) *scenario.Runner {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := client.New(server.URL, 0, nil)
	auth := client.NewAuthProvider(c, fakebooker.DefaultCredentials)
	return scenario.NewRunner(c, auth, payload.NewBuilder(payload.NewFakeGenerator(1)))
}

func failedIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

func TestBuiltInScenariosAreValid(t *testing.T) {
	names := make(map[string]bool)
	for _, e := range AllScenarios() {
		assert.NoError(t, e.Scenario.Validate(), e.ID().String())
		assert.False(t, names[e.ID().String()], "duplicate id %s", e.ID())
		names[e.ID().String()] = true
	}
}

func TestSuitePassesAgainstFakeService(t *testing.T) {
	for _, missingFieldStatus := range []int{400, 500} {
		runner := newRunner(t, fakebooker.New(fakebooker.Options{MissingFieldStatus: missingFieldStatus}))
		results := RunTestSuite(context.Background(), SuiteParams{
			Runner:   runner,
			Entries:  AllScenarios(),
			Parallel: 4,
		})
		assert.True(t, results.OK(), "failures with status %d: %v", missingFieldStatus, results.Failures)
		assert.Len(t, results.Tests, len(AllScenarios())+len(groupsInOrder(AllScenarios())))
	}
}

func TestSuiteReportsFailuresByTestID(t *testing.T) {
	runner := newRunner(t, httphelpers.HandlerWithStatus(503))
	results := RunTestSuite(context.Background(), SuiteParams{
		Runner:  runner,
		Entries: AllScenarios(),
	})

	require.False(t, results.OK())
	assert.Contains(t, failedIDs(results), "ping/service answers repeated pings")
	assert.Contains(t, failedIDs(results), "get booking/nonexistent booking is not found")
	for _, f := range results.Failures {
		require.NotEmpty(t, f.Errors, f.TestID.String())
	}
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "expected status 201, got 503")
}

func TestSuiteAppliesFilter(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^auth/"))
	require.NoError(t, filters.MustNotMatch.Set("invalid"))

	runner := newRunner(t, fakebooker.New(fakebooker.Options{}))
	results := RunTestSuite(context.Background(), SuiteParams{
		Runner:  runner,
		Entries: AllScenarios(),
		Filter:  filters.AsFilter,
	})

	require.True(t, results.OK())
	var ids []string
	for _, r := range results.Tests {
		ids = append(ids, r.TestID.String())
	}
	assert.Equal(t, []string{"auth/valid credentials get a token", "auth"}, ids)
}

func TestSuiteAttachesScenarioOutput(t *testing.T) {
	runner := newRunner(t, fakebooker.New(fakebooker.Options{}))
	logger := &outputRecorder{}
	entries := []Entry{{Group: "g", Scenario: scenario.Scenario{Name: "s", Steps: []scenario.Step{
		{Action: scenario.Ping},
	}}}}
	results := RunTestSuite(context.Background(), SuiteParams{
		Runner:     runner,
		Entries:    entries,
		TestLogger: logger,
	})

	require.True(t, results.OK())
	output := logger.output["g/s"]
	require.NotEmpty(t, output)
	assert.Contains(t, output[0].Message, "GET ")
	assert.Contains(t, output[len(output)-1].Message, `step "1 PING" passed with status 201`)
}

func TestFileEntries(t *testing.T) {
	entries := FileEntries([]scenario.Scenario{{Name: "a"}, {Name: "b"}})
	require.Len(t, entries, 2)
	assert.Equal(t, "files/b", entries[1].ID().String())
}

type outputRecorder struct {
	output map[string]framework.CapturedOutput
}

func (r *outputRecorder) TestStarted(framework.TestID)         {}
func (r *outputRecorder) TestError(framework.TestID, error)    {}
func (r *outputRecorder) TestSkipped(framework.TestID, string) {}

func (r *outputRecorder) TestFinished(id framework.TestID, failed bool, output framework.CapturedOutput) {
	if r.output == nil {
		r.output = make(map[string]framework.CapturedOutput)
	}
	r.output[id.String()] = output
}
