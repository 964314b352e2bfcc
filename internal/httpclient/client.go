// Package httpclient wraps http.Client with the WebDAV verbs the sync core
// needs: PROPFIND for tokens and etags, REPORT for bulk object fetch, and
// GET/PUT/DELETE with optimistic-concurrency preconditions.
package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// HttpClientWrapper is the transport boundary of the module. Everything
// above it deals in raw object text and etags only.
type HttpClientWrapper interface {
	DoPROPFIND(url string, depth int, props ...string) (*PropfindResponse, error)
	DoREPORT(url string, depth int, query interface{}) (*ReportResponse, error)
	DoGET(url string) (body string, etag string, err error)
	DoPUT(url string, contentType string, data []byte, precondition Precondition) (newEtag string, err error)
	DoDELETE(url string, etag string) error
}

type httpClientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// NewHttpClientWrapper creates a new wrapper. The http.Client carries the
// per-call timeout and any auth transport; the logger is required.
func NewHttpClientWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) (HttpClientWrapper, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &httpClientWrapper{client: client, baseURL: baseURL, logger: logger}, nil
}

// resolveURL resolves a URL string against the base URL.
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// Precondition expresses the concurrency demand attached to a write.
type Precondition struct {
	kind preconditionKind
	etag string
}

type preconditionKind int

const (
	preconditionNone preconditionKind = iota
	preconditionIfMatch
	preconditionIfNoneMatch
)

// NoPrecondition issues the write unconditionally.
func NoPrecondition() Precondition { return Precondition{} }

// IfMatch demands the resource still carries etag (lost-update guard).
func IfMatch(etag string) Precondition {
	return Precondition{kind: preconditionIfMatch, etag: etag}
}

// IfNoneMatch demands the resource does not exist yet (duplicate-create
// guard).
func IfNoneMatch() Precondition {
	return Precondition{kind: preconditionIfNoneMatch}
}

func (p Precondition) apply(header http.Header) {
	switch p.kind {
	case preconditionIfMatch:
		if p.etag != "" {
			header.Set("If-Match", p.etag)
		}
	case preconditionIfNoneMatch:
		header.Set("If-None-Match", "*")
	}
}
