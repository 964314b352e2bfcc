package httpclient

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// BasicAuthTransport adds Basic Auth credentials to every outgoing request.
type BasicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewBasicAuthTransport creates a transport over the given underlying
// RoundTripper; nil means http.DefaultTransport.
func NewBasicAuthTransport(username, password string, transport http.RoundTripper, logger *slog.Logger) *BasicAuthTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Username == "" || t.Password == "" {
		return nil, errors.New("basic auth credentials cannot be empty")
	}

	t.Logger.Debug("outgoing request", "method", req.Method, "url", req.URL.String())

	req.SetBasicAuth(t.Username, t.Password)
	return t.Transport.RoundTrip(req)
}
