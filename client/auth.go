package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// AuthResult is the outcome of a POST /auth call that got an HTTP response.
type AuthResult struct {
	Response
	Token ldvalue.OptionalString
}

// Refused returns true if the service answered 200 but did not issue a token. This is how the
// service reports bad credentials; it is not an error.
func (a AuthResult) Refused() bool {
	return a.StatusCode == 200 && (!a.Token.IsDefined() || a.Token.StringValue() == "")
}

// OK returns true if a token was issued.
func (a AuthResult) OK() bool {
	return a.StatusCode == 200 && !a.Refused()
}

// StatusError means POST /auth answered with a status other than 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("auth request returned status %d: %s", e.StatusCode, e.Body)
}

// AuthProvider exchanges credentials for tokens. The token for its configured credentials is
// fetched at most once and then reused for the life of the provider.
type AuthProvider struct {
	client *Client
	creds  servicedef.Credentials
	group  singleflight.Group
	token  string
	lock   sync.Mutex
}

func NewAuthProvider(client *Client, creds servicedef.Credentials) *AuthProvider {
	return &AuthProvider{client: client, creds: creds}
}

// Credentials returns the configured credentials.
func (a *AuthProvider) Credentials() servicedef.Credentials {
	return a.creds
}

// Authenticate posts creds to the auth endpoint. The error is non-nil only for a transport
// failure; any HTTP answer, including a refusal, is described by the AuthResult.
func (a *AuthProvider) Authenticate(ctx context.Context, creds servicedef.Credentials, logger framework.Logger) (AuthResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return AuthResult{}, err
	}
	resp, err := a.client.Post(ctx, servicedef.AuthPath, body, logger)
	if err != nil {
		return AuthResult{Response: resp}, err
	}
	result := AuthResult{Response: resp}
	if resp.StatusCode == 200 {
		var ar servicedef.AuthResponse
		if json.Unmarshal(resp.Body, &ar) == nil {
			result.Token = ar.Token
		}
	}
	if result.OK() && creds == a.creds {
		a.lock.Lock()
		a.token = result.Token.StringValue()
		a.lock.Unlock()
	}
	return result, nil
}

// Token returns a token for the configured credentials, authenticating on first use. Concurrent
// callers share one request. If the credentials are refused, ok is false and err is nil; refusals
// are not cached. A status other than 200 is returned as a *StatusError.
func (a *AuthProvider) Token(ctx context.Context, logger framework.Logger) (token string, ok bool, err error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	a.lock.Lock()
	cached := a.token
	a.lock.Unlock()
	if cached != "" {
		logger.Printf("using cached token for %q", a.creds.Username)
		return cached, true, nil
	}

	// Only the caller whose function runs sees the auth request in its log.
	ran := false
	v, err, _ := a.group.Do("token", func() (interface{}, error) {
		ran = true
		a.lock.Lock()
		cached := a.token
		a.lock.Unlock()
		if cached != "" {
			return cached, nil
		}
		result, err := a.Authenticate(ctx, a.creds, logger)
		if err != nil {
			return "", err
		}
		if result.StatusCode != 200 {
			return "", &StatusError{StatusCode: result.StatusCode, Body: string(result.Body)}
		}
		if result.Refused() {
			return "", nil
		}
		return result.Token.StringValue(), nil
	})
	if !ran {
		switch {
		case err != nil:
			logger.Printf("shared token request for %q failed: %s", a.creds.Username, err)
		case v.(string) == "":
			logger.Printf("shared token request for %q was refused", a.creds.Username)
		default:
			logger.Printf("using shared token for %q", a.creds.Username)
		}
	}
	if err != nil {
		return "", false, err
	}
	token = v.(string)
	return token, token != "", nil
}

// Invalidate forgets the cached token.
func (a *AuthProvider) Invalidate() {
	a.lock.Lock()
	a.token = ""
	a.lock.Unlock()
}
