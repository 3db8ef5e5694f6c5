package framework

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedProbe(status int, body string, err error) StatusProbe {
	return func(context.Context, Logger) (int, string, error) {
		return status, body, err
	}
}

func TestNewTestHarnessReportsServiceInfo(t *testing.T) {
	var out bytes.Buffer
	h, err := NewTestHarness(context.Background(), "http://booker/", "http://booker/ping",
		fixedProbe(201, "Created\n", nil), time.Second, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, "http://booker", h.ServiceBaseURL())
	assert.Equal(t, "http://booker/ping", h.ServiceInfo().StatusURL)
	assert.Equal(t, 201, h.ServiceInfo().StatusCode)
	assert.Equal(t, "Created", h.ServiceInfo().Body)
	assert.Contains(t, out.String(), "Connecting to service at http://booker/ping")
	assert.Contains(t, out.String(), "Service answered with status 201")
}

func TestNewTestHarnessRetriesUntilServiceAnswers(t *testing.T) {
	var calls int32
	probe := func(context.Context, Logger) (int, string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, "", errors.New("connection refused")
		}
		return 201, "Created", nil
	}
	h, err := NewTestHarness(context.Background(), "http://booker", "http://booker/ping", probe, time.Second*5, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 201, h.ServiceInfo().StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewTestHarnessPassesLoggerToProbe(t *testing.T) {
	var logger CapturingLogger
	probe := func(_ context.Context, l Logger) (int, string, error) {
		l.Printf("GET /ping")
		return 200, "", nil
	}
	_, err := NewTestHarness(context.Background(), "http://booker", "http://booker/ping", probe, time.Second, &logger, nil)
	require.NoError(t, err)
	require.Len(t, logger.Output(), 1)
	assert.Equal(t, "GET /ping", logger.Output()[0].Message)
}

func TestNewTestHarnessTimesOutOnErrorStatus(t *testing.T) {
	_, err := NewTestHarness(context.Background(), "http://booker", "http://booker/ping",
		fixedProbe(503, "", nil), time.Millisecond*250, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 503")
}

func TestNewTestHarnessTimesOutWhenServiceIsDown(t *testing.T) {
	_, err := NewTestHarness(context.Background(), "http://booker", "http://booker/ping",
		fixedProbe(0, "", errors.New("connection refused")), time.Millisecond*250, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Contains(t, err.Error(), "connection refused")
}
