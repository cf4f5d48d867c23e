package px6

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public px6 API endpoint
	DefaultBaseURL = "https://px6.link"
	// DefaultTimeout bounds a single call when no http.Client is supplied
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when no other user agent is configured
	DefaultUserAgent = "px6ctl"
)

// Client represents a px6 API client
type Client struct {
	baseURL   string
	apiKey    string
	transport Transport
	metrics   *Metrics
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL    string
	httpClient *http.Client
	transport  Transport
	timeout    time.Duration
	userAgent  string
	metrics    *Metrics
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sends requests through client. Ignored when WithTransport is set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTransport replaces the HTTP transport entirely.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// NewClient creates a new px6 client. No request is made until the first call.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	options := clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&options)
	}

	baseURL := strings.TrimRight(options.baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", ErrInvalidConfig, options.baseURL)
	}

	transport := options.transport
	if transport == nil {
		httpClient := options.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: options.timeout}
		}
		transport = NewHTTPTransport(httpClient, options.userAgent)
	}

	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		transport: transport,
		metrics:   options.metrics,
		logger:    logger,
	}, nil
}

// BaseURL returns the endpoint the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// prepare validates params and builds the request. It performs no I/O.
func (c *Client) prepare(method Method, params Params) (*Request, error) {
	if err := params.Validate(); err != nil {
		c.metrics.observe(method, err, 0)
		return nil, err
	}
	return &Request{
		HTTPMethod: http.MethodGet,
		BaseURL:    c.baseURL,
		APIKey:     c.apiKey,
		Method:     method,
		Query:      params.Query(),
	}, nil
}

// execute sends a prepared request and classifies the outcome
func execute[T any](ctx context.Context, c *Client, req *Request) (*T, error) {
	requestID := uuid.NewString()
	start := time.Now()

	resp, transportErr := c.transport.Do(ctx, req)
	result, err := classify[T](req.Method, resp, transportErr)

	elapsed := time.Since(start)
	c.metrics.observe(req.Method, err, elapsed)

	event := c.logger.Debug().
		Str("request_id", requestID).
		Str("method", string(req.Method)).
		Str("url", req.RedactedURL()).
		Dur("elapsed", elapsed)
	if resp != nil {
		event = event.Int("status", resp.StatusCode)
	}
	if err != nil {
		event = event.Err(err).Str("kind", KindOf(err).String())
	}
	event.Msg("px6 API call")

	return result, err
}

// invoke is the blocking calling convention
func invoke[T any](ctx context.Context, c *Client, method Method, params Params) (*T, error) {
	req, err := c.prepare(method, params)
	if err != nil {
		return nil, err
	}
	return execute[T](ctx, c, req)
}

// TestConnection checks the key by fetching the country list
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Ping(ctx)
	return err
}

// Ping makes the cheapest authenticated call and returns the account envelope
func (c *Client) Ping(ctx context.Context) (*Account, error) {
	res, err := c.GetCountry(ctx, GetCountryParams{})
	if err != nil {
		return nil, err
	}
	return &res.Account, nil
}

// GetPrice returns the cost of an order for count proxies over a period
func (c *Client) GetPrice(ctx context.Context, params GetPriceParams) (*GetPriceResult, error) {
	return invoke[GetPriceResult](ctx, c, MethodGetPrice, params)
}

// GetCount returns how many proxies can be bought in a country
func (c *Client) GetCount(ctx context.Context, params GetCountParams) (*GetCountResult, error) {
	return invoke[GetCountResult](ctx, c, MethodGetCount, params)
}

// GetCountry returns the countries proxies can be bought in
func (c *Client) GetCountry(ctx context.Context, params GetCountryParams) (*GetCountryResult, error) {
	return invoke[GetCountryResult](ctx, c, MethodGetCountry, params)
}

// GetProxy returns one page of the account's proxies
func (c *Client) GetProxy(ctx context.Context, params GetProxyParams) (*GetProxyResult, error) {
	return invoke[GetProxyResult](ctx, c, MethodGetProxy, params)
}

// SetType changes the protocol of the given proxies
func (c *Client) SetType(ctx context.Context, params SetTypeParams) (*SetTypeResult, error) {
	return invoke[SetTypeResult](ctx, c, MethodSetType, params)
}

// SetDescription replaces the description of the selected proxies
func (c *Client) SetDescription(ctx context.Context, params SetDescriptionParams) (*SetDescriptionResult, error) {
	return invoke[SetDescriptionResult](ctx, c, MethodSetDescription, params)
}

// Buy orders new proxies. Never retry a failed Buy blindly: the order may
// have gone through.
func (c *Client) Buy(ctx context.Context, params BuyParams) (*BuyResult, error) {
	return invoke[BuyResult](ctx, c, MethodBuy, params)
}

// Prolong extends the given proxies
func (c *Client) Prolong(ctx context.Context, params ProlongParams) (*ProlongResult, error) {
	return invoke[ProlongResult](ctx, c, MethodProlong, params)
}

// Delete removes proxies by id or description
func (c *Client) Delete(ctx context.Context, params DeleteParams) (*DeleteResult, error) {
	return invoke[DeleteResult](ctx, c, MethodDelete, params)
}

// Check reports whether a proxy is working
func (c *Client) Check(ctx context.Context, params CheckParams) (*CheckResult, error) {
	return invoke[CheckResult](ctx, c, MethodCheck, params)
}

// IPAuth binds addresses for login-free access, or removes all bindings
func (c *Client) IPAuth(ctx context.Context, params IPAuthParams) (*IPAuthResult, error) {
	return invoke[IPAuthResult](ctx, c, MethodIPAuth, params)
}

// Async returns the suspending variant of the client. Both share every
// request and response step.
func (c *Client) Async() *AsyncClient {
	return &AsyncClient{client: c}
}
