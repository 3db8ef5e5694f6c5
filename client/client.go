// Package client sends requests to the booking service under test.
//
// Client never treats an HTTP status as an error: whatever the service answers is returned in a
// Response for the caller to check. Only a failure to get an answer at all (connection refused,
// timeout, unreadable body) is reported as an error, of type *TransportError.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// DefaultTimeout is the per-call timeout used if none is configured.
const DefaultTimeout = time.Second * 5

// RequestIDHeader carries a unique id for each request, so that a call in the debug output can be
// matched to the service's own logs.
const RequestIDHeader = "X-Request-Id"

// Client issues requests against the base URL of the booking service. It is safe for concurrent
// use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Request describes one call to the service. Path is relative to the base URL.
type Request struct {
	Method  string
	Path    string
	Body    []byte
	Headers map[string]string
	// Token, if non-empty, is sent as the token cookie.
	Token string
}

// Response is everything the client observed about one call.
type Response struct {
	Method      string
	URL         string
	StatusCode  int
	Header      http.Header
	Body        []byte
	RequestBody []byte
	Duration    time.Duration
}

// Status returns the HTTP status code.
func (r Response) Status() int { return r.StatusCode }

// JSON parses the response body. A body that is empty or not valid JSON parses as null.
func (r Response) JSON() ldvalue.Value { return parseJSON(r.Body) }

// RequestJSON parses the body that was sent, or returns null if there was none.
func (r Response) RequestJSON() ldvalue.Value { return parseJSON(r.RequestBody) }

func parseJSON(data []byte) ldvalue.Value {
	if len(bytes.TrimSpace(data)) == 0 {
		return ldvalue.Null()
	}
	return ldvalue.Parse(data)
}

// TransportError means the request did not produce an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout returns true if the request failed because it took too long.
func (e *TransportError) Timeout() bool {
	if e.Err == context.DeadlineExceeded {
		return true
	}
	t, ok := e.Err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}

// New creates a Client. A zero timeout means DefaultTimeout. If httpClient is nil, a new
// http.Client is used.
func New(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends the request and reads the whole response. Each call is described in logger, which
// may be nil.
func (c *Client) Do(ctx context.Context, r Request, logger framework.Logger) (Response, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	url := c.baseURL + r.Path
	resp := Response{Method: r.Method, URL: url, RequestBody: r.Body}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return resp, &TransportError{Method: r.Method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.AddCookie(&http.Cookie{Name: servicedef.TokenCookie, Value: r.Token})
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	if r.Body != nil {
		logger.Printf("%s %s [%s] %s", r.Method, url, requestID, string(r.Body))
	} else {
		logger.Printf("%s %s [%s]", r.Method, url, requestID)
	}

	start := time.Now()
	hresp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Duration = time.Since(start)
		if ctx.Err() == context.DeadlineExceeded {
			err = context.DeadlineExceeded
		}
		logger.Printf("  failed after %s: %s", resp.Duration, err)
		return resp, &TransportError{Method: r.Method, URL: url, Err: err}
	}
	defer hresp.Body.Close()
	data, err := io.ReadAll(hresp.Body)
	resp.Duration = time.Since(start)
	if err != nil {
		logger.Printf("  failed reading body after %s: %s", resp.Duration, err)
		return resp, &TransportError{Method: r.Method, URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}
	resp.StatusCode = hresp.StatusCode
	resp.Header = hresp.Header
	resp.Body = data
	logger.Printf("  %d in %s: %s", resp.StatusCode, resp.Duration.Round(time.Millisecond), string(data))
	return resp, nil
}

func (c *Client) Get(ctx context.Context, path string, logger framework.Logger) (Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, logger)
}

func (c *Client) Post(ctx context.Context, path string, body []byte, logger framework.Logger) (Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, logger)
}

func (c *Client) Put(ctx context.Context, path string, body []byte, token string, logger framework.Logger) (Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Token: token}, logger)
}

func (c *Client) Delete(ctx context.Context, path string, token string, logger framework.Logger) (Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Token: token}, logger)
}

// StatusProbe returns a framework.StatusProbe that sends GET path through this client.
func (c *Client) StatusProbe(path string) framework.StatusProbe {
	return func(ctx context.Context, logger framework.Logger) (int, string, error) {
		resp, err := c.Get(ctx, path, logger)
		if err != nil {
			return 0, "", err
		}
		return resp.StatusCode, string(resp.Body), nil
	}
}
