package proxies

import (
	"context"

	"github.com/s0up4200/px6ctl/px6"
)

// CountFetcher starts availability lookups without blocking. *px6.AsyncClient
// satisfies it.
type CountFetcher interface {
	GetCount(ctx context.Context, params px6.GetCountParams) *px6.Pending[px6.GetCountResult]
}

var _ CountFetcher = (*px6.AsyncClient)(nil)

// ProxyFormatter defines the interface for formatting proxy output
type ProxyFormatter interface {
	FormatProxyList(proxies []ProxyInfo, options FormatOptions) string
	FormatProxiesToDelete(proxies []ProxyInfo) string
	FormatProxiesToProlong(proxies []ProxyInfo, period px6.Period, quote *Quote) string
	FormatOrder(order BuyOptions, quote *Quote, available int) string
	FormatCheckResults(result BatchCheckResult) string
	FormatCountries(counts []CountryCount) string
}

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowDetails     bool
	ShowCredentials bool
}
