package px6

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Keys under which the api key and method name appear in Request.Mapping.
const (
	KeyAPIKey = "api_key"
	KeyMethod = "method"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 10 << 20

// Request is everything a Transport needs to perform one API call.
type Request struct {
	HTTPMethod string
	BaseURL    string
	APIKey     string
	Method     Method
	Query      Query
}

// Mapping returns the complete ordered key/value form of the request: the api
// key, the method name and then the operation parameters.
func (r *Request) Mapping() Query {
	m := make(Query, 0, len(r.Query)+2)
	m = m.add(KeyAPIKey, r.APIKey)
	m = m.add(KeyMethod, string(r.Method))
	return append(m, r.Query...)
}

// URL renders the request in the API's path layout:
// {base}/api/{api_key}/{method}?{query}
func (r *Request) URL() string {
	u := fmt.Sprintf("%s/api/%s/%s", strings.TrimRight(r.BaseURL, "/"), url.PathEscape(r.APIKey), r.Method)
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// RedactedURL is URL with the api key masked, for logging
func (r *Request) RedactedURL() string {
	masked := *r
	masked.APIKey = redact(r.APIKey)
	return masked.URL()
}

func redact(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}

// Response is the raw outcome of a call that produced an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs API calls. Implementations return an error only when no
// HTTP response was obtained; any status code is a Response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with a *http.Client.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// NewHTTPTransport creates a transport around client
func NewHTTPTransport(client *http.Client, userAgent string) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPTransport{client: client, userAgent: userAgent}
}

// Do performs the request
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, scrubKey(err, req.APIKey)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// scrubKey keeps the api key out of *url.Error messages, which embed the URL
func scrubKey(err error, key string) error {
	if urlErr, ok := err.(*url.Error); ok && key != "" {
		scrubbed := *urlErr
		scrubbed.URL = strings.ReplaceAll(urlErr.URL, url.PathEscape(key), redact(key))
		return &scrubbed
	}
	return err
}
