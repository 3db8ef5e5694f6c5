package framework

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const statusPollInterval = time.Millisecond * 100

// StatusProbe makes one status query to the service under test. A non-nil error means no HTTP
// response was received; any status, successful or not, is returned as data.
type StatusProbe func(ctx context.Context, logger Logger) (status int, body string, err error)

// ServiceInfo is what the harness learned about the service under test from the initial
// status query.
type ServiceInfo struct {
	StatusURL  string
	StatusCode int
	Body       string
	Latency    time.Duration
}

// TestHarness represents a service under test that has been verified to be reachable.
type TestHarness struct {
	serviceBaseURL string
	serviceInfo    ServiceInfo
	logger         Logger
}

// NewTestHarness creates a TestHarness instance, and verifies that the service under test is
// responding by calling probe until it returns a 2xx status or statusQueryTimeout elapses.
// statusURL is only used for display. Progress is written to startupOutput.
func NewTestHarness(
	ctx context.Context,
	serviceBaseURL string,
	statusURL string,
	probe StatusProbe,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		serviceBaseURL: strings.TrimSuffix(serviceBaseURL, "/"),
		logger:         debugLogger,
	}

	info, err := queryServiceStatus(ctx, statusURL, probe, statusQueryTimeout, debugLogger, startupOutput)
	if err != nil {
		return nil, err
	}
	h.serviceInfo = info

	return h, nil
}

func (h *TestHarness) ServiceBaseURL() string {
	return h.serviceBaseURL
}

func (h *TestHarness) ServiceInfo() ServiceInfo {
	return h.serviceInfo
}

func queryServiceStatus(
	ctx context.Context,
	url string,
	probe StatusProbe,
	timeout time.Duration,
	logger Logger,
	output io.Writer,
) (ServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to service at %s", url)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		fmt.Fprintf(output, ".")
		start := time.Now()
		status, body, err := probe(ctx, logger)
		if err == nil {
			if status >= 200 && status < 300 {
				fmt.Fprintln(output)
				info := ServiceInfo{
					StatusURL:  url,
					StatusCode: status,
					Body:       strings.TrimSpace(body),
					Latency:    time.Since(start),
				}
				fmt.Fprintf(output, "Service answered with status %d in %s\n", info.StatusCode, info.Latency.Round(time.Millisecond))
				return info, nil
			}
			err = fmt.Errorf("service returned status code %d", status)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return ServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		case <-time.After(statusPollInterval):
		}
	}
}
