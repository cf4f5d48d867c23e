package proxies

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/px6ctl/px6"
)

// pageLimit is the largest page the API serves
const pageLimit = px6.MaxPageLimit

// dateLayout is the layout of the date and date_end fields
const dateLayout = "2006-01-02 15:04:05"

// Client wraps the px6 client with pagination, retries and fan-out helpers
type Client struct {
	api    px6.API
	counts CountFetcher
	retry  RetryPolicy
	logger zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRetryPolicy overrides the retry policy for read-only calls
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithCountFetcher enables concurrent availability lookups
func WithCountFetcher(f CountFetcher) ClientOption {
	return func(c *Client) {
		c.counts = f
	}
}

// NewClient creates a new proxies client on top of api
func NewClient(api px6.API, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		api:    api,
		retry:  DefaultRetryPolicy(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TestConnection checks the API key
func (c *Client) TestConnection(ctx context.Context) error {
	if err := c.api.TestConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to px6: %w", err)
	}
	return nil
}

// GetAllProxies pages through getproxy until every proxy has been read
func (c *Client) GetAllProxies(ctx context.Context, state px6.ProxyState, descr px6.Description) ([]px6.Proxy, *px6.Account, error) {
	limit, err := px6.NewPageLimit(pageLimit)
	if err != nil {
		return nil, nil, err
	}

	var (
		all     []px6.Proxy
		account px6.Account
	)
	for page := 1; ; page++ {
		params := px6.GetProxyParams{State: state, Description: descr, Page: page, Limit: limit}
		res, err := retry(ctx, c, px6.MethodGetProxy, func() (*px6.GetProxyResult, error) {
			return c.api.GetProxy(ctx, params)
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get proxies (page %d): %w", page, err)
		}

		account = res.Account
		all = append(all, res.List...)

		// list_count is only trusted as an account total when it exceeds the
		// page; some accounts report the page length instead
		total := res.ListCount.Int()
		if len(res.List) < pageLimit || (total > len(res.List) && len(all) >= total) {
			break
		}
	}

	c.logger.Debug().Msgf("Retrieved %d proxies from px6", len(all))
	return all, &account, nil
}

// GetPrice quotes an order
func (c *Client) GetPrice(ctx context.Context, params px6.GetPriceParams) (*px6.GetPriceResult, error) {
	res, err := retry(ctx, c, px6.MethodGetPrice, func() (*px6.GetPriceResult, error) {
		return c.api.GetPrice(ctx, params)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get price: %w", err)
	}
	return res, nil
}

// GetCount returns how many proxies are available in one country
func (c *Client) GetCount(ctx context.Context, params px6.GetCountParams) (int, error) {
	res, err := retry(ctx, c, px6.MethodGetCount, func() (*px6.GetCountResult, error) {
		return c.api.GetCount(ctx, params)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get count for %s: %w", params.Country, err)
	}
	return res.Count.Int(), nil
}

// GetCountries returns the countries proxies of version can be bought in
func (c *Client) GetCountries(ctx context.Context, version px6.ProxyVersion) ([]string, error) {
	res, err := retry(ctx, c, px6.MethodGetCountry, func() (*px6.GetCountryResult, error) {
		return c.api.GetCountry(ctx, px6.GetCountryParams{Version: version})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get countries: %w", err)
	}
	return res.List, nil
}

// Check verifies a single proxy
func (c *Client) Check(ctx context.Context, params px6.CheckParams) (bool, error) {
	res, err := retry(ctx, c, px6.MethodCheck, func() (*px6.CheckResult, error) {
		return c.api.Check(ctx, params)
	})
	if err != nil {
		return false, err
	}
	return bool(res.ProxyStatus), nil
}

// Delete removes the given proxies
func (c *Client) Delete(ctx context.Context, ids px6.ProxyIDs) (int, error) {
	res, err := c.api.Delete(ctx, px6.DeleteParams{IDs: ids})
	if err != nil {
		return 0, fmt.Errorf("failed to delete proxies %s: %w", ids, err)
	}

	c.logger.Info().Str("ids", ids.String()).Int("count", res.Count.Int()).
		Msg("Successfully deleted proxies")
	return res.Count.Int(), nil
}

// Prolong extends the given proxies by period
func (c *Client) Prolong(ctx context.Context, ids px6.ProxyIDs, period px6.Period) (*px6.ProlongResult, error) {
	res, err := c.api.Prolong(ctx, px6.ProlongParams{Period: period, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to prolong proxies %s: %w", ids, err)
	}

	c.logger.Info().Str("ids", ids.String()).Int("days", period.Days()).
		Float64("price", res.Price.Float()).Msg("Successfully prolonged proxies")
	return res, nil
}

// Buy places an order. It is never retried.
func (c *Client) Buy(ctx context.Context, params px6.BuyParams) (*px6.BuyResult, error) {
	res, err := c.api.Buy(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to buy proxies: %w", err)
	}

	c.logger.Info().Int("count", res.Count.Int()).Str("country", res.Country).
		Float64("price", res.Price.Float()).Msg("Successfully bought proxies")
	return res, nil
}

// SetType switches the protocol of the given proxies
func (c *Client) SetType(ctx context.Context, ids px6.ProxyIDs, t px6.ProxyType) error {
	if _, err := c.api.SetType(ctx, px6.SetTypeParams{IDs: ids, Type: t}); err != nil {
		return fmt.Errorf("failed to set type of %s: %w", ids, err)
	}
	return nil
}

// SetDescription relabels proxies selected by ids or by their current description
func (c *Client) SetDescription(ctx context.Context, params px6.SetDescriptionParams) (int, error) {
	res, err := c.api.SetDescription(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to set description: %w", err)
	}
	return res.Count.Int(), nil
}

// IPAuth binds addresses to the account or removes every binding
func (c *Client) IPAuth(ctx context.Context, target px6.IPAuth) error {
	if _, err := c.api.IPAuth(ctx, px6.IPAuthParams{Target: target}); err != nil {
		return fmt.Errorf("failed to update IP authorization: %w", err)
	}
	return nil
}

// ProxyInfo contains relevant proxy information for filtering and display
type ProxyInfo struct {
	ID          string           `json:"id" yaml:"id"`
	Version     px6.ProxyVersion `json:"version" yaml:"version"`
	IP          string           `json:"ip" yaml:"ip"`
	Host        string           `json:"host" yaml:"host"`
	Port        int              `json:"port" yaml:"port"`
	User        string           `json:"user" yaml:"user"`
	Pass        string           `json:"pass,omitempty" yaml:"pass,omitempty"`
	Type        px6.ProxyType    `json:"type" yaml:"type"`
	Country     string           `json:"country" yaml:"country"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Active      bool             `json:"active" yaml:"active"`
	Bought      time.Time        `json:"bought" yaml:"bought"`
	Expires     time.Time        `json:"expires" yaml:"expires"`
}

// GetProxyInfo converts an API record to our ProxyInfo struct
func GetProxyInfo(p px6.Proxy) ProxyInfo {
	info := ProxyInfo{
		ID:          string(p.ID),
		Version:     p.Version,
		IP:          p.IP,
		Host:        p.Host,
		Port:        p.Port.Int(),
		User:        p.User,
		Pass:        p.Pass,
		Type:        p.Type,
		Country:     p.Country,
		Description: p.Description,
		Active:      bool(p.Active),
		Bought:      p.Unixtime.Time,
		Expires:     p.UnixtimeEnd.Time,
	}

	// Older records only carry the formatted dates
	if info.Bought.IsZero() {
		info.Bought = parseDate(p.Date)
	}
	if info.Expires.IsZero() {
		info.Expires = parseDate(p.DateEnd)
	}

	return info
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DaysLeft returns whole days until expiry, negative once expired
func (p ProxyInfo) DaysLeft(now time.Time) int {
	if p.Expires.IsZero() {
		return 0
	}
	return int(p.Expires.Sub(now).Hours() / 24)
}

// Expired reports whether the proxy has run out at now
func (p ProxyInfo) Expired(now time.Time) bool {
	return !p.Expires.IsZero() && !p.Expires.After(now)
}

// Address returns host:port, falling back to the IP for records without a host
func (p ProxyInfo) Address() string {
	host := p.Host
	if host == "" {
		host = p.IP
	}
	return net.JoinHostPort(host, strconv.Itoa(p.Port))
}

// ProxyString returns the ip:port:user:pass form accepted by check
func (p ProxyInfo) ProxyString() string {
	host := p.Host
	if host == "" {
		host = p.IP
	}
	return fmt.Sprintf("%s:%d:%s:%s", host, p.Port, p.User, p.Pass)
}

// proxyIDs builds a validated id list from infos
func proxyIDs(infos []ProxyInfo) (px6.ProxyIDs, error) {
	raw := make([]string, 0, len(infos))
	for _, p := range infos {
		raw = append(raw, p.ID)
	}
	return px6.NewProxyIDs(raw...)
}
