package proxies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/px6ctl/px6"
)

// ErrNotEnoughProxies is returned when an order asks for more proxies than are available
var ErrNotEnoughProxies = errors.New("not enough proxies available")

// SearchOptions selects which proxies the API returns before filtering
type SearchOptions struct {
	State       px6.ProxyState
	Description px6.Description
}

// DeleteOptions contains options for deleting proxies
type DeleteOptions struct {
	DryRun        bool
	ConfirmDelete bool
}

// ProlongOptions contains options for prolonging proxies
type ProlongOptions struct {
	Period  px6.Period
	DryRun  bool
	Confirm bool
}

// BuyOptions describes an order
type BuyOptions struct {
	Count       int
	Period      px6.Period
	Country     px6.Country
	Version     px6.ProxyVersion
	Type        px6.ProxyType
	Description px6.Description
	AutoProlong bool
	DryRun      bool
	Confirm     bool
}

// Quote is the price of an order or a prolongation
type Quote struct {
	Price    float64
	Currency string
	Balance  float64
}

// Affordable reports whether the balance covers the quote
func (q *Quote) Affordable() bool {
	return q.Balance >= q.Price
}

// Operations handles proxy search, order and maintenance workflows
type Operations struct {
	client    *Client
	logger    zerolog.Logger
	formatter ProxyFormatter
	out       io.Writer
	in        io.Reader
}

// NewOperations creates a new Operations instance
func NewOperations(client *Client, logger zerolog.Logger) *Operations {
	return &Operations{
		client:    client,
		logger:    logger,
		formatter: NewConsoleFormatter(),
		out:       os.Stdout,
		in:        os.Stdin,
	}
}

// SetOutput redirects prompts and previews
func (o *Operations) SetOutput(w io.Writer) {
	o.out = w
}

// SetInput sets where confirmations are read from
func (o *Operations) SetInput(r io.Reader) {
	o.in = r
}

// SetFormatter replaces the console formatter
func (o *Operations) SetFormatter(f ProxyFormatter) {
	o.formatter = f
}

// Client returns the underlying proxies client
func (o *Operations) Client() *Client {
	return o.client
}

// GetAllProxies returns every proxy selected by opts
func (o *Operations) GetAllProxies(ctx context.Context, opts SearchOptions) ([]ProxyInfo, error) {
	proxies, _, err := o.client.GetAllProxies(ctx, opts.State, opts.Description)
	if err != nil {
		return nil, err
	}

	results := make([]ProxyInfo, 0, len(proxies))
	for _, p := range proxies {
		results = append(results, GetProxyInfo(p))
	}
	sortByExpiry(results)
	return results, nil
}

// SearchProxies returns the proxies selected by opts that also match filterFunc
func (o *Operations) SearchProxies(ctx context.Context, opts SearchOptions, filterFunc func(ProxyInfo) bool) ([]ProxyInfo, error) {
	all, err := o.GetAllProxies(ctx, opts)
	if err != nil {
		return nil, err
	}

	var results []ProxyInfo
	for _, info := range all {
		if filterFunc == nil || filterFunc(info) {
			results = append(results, info)
		}
	}

	o.logger.Info().Msgf("Found %d proxies matching filter", len(results))
	return results, nil
}

// DeleteProxies deletes the given proxies
func (o *Operations) DeleteProxies(ctx context.Context, proxies []ProxyInfo, opts DeleteOptions) error {
	if len(proxies) == 0 {
		o.logger.Info().Msg("No proxies to delete")
		return nil
	}

	if opts.DryRun {
		o.logger.Info().Msg("DRY RUN MODE - No proxies will be deleted")
		fmt.Fprint(o.out, o.formatter.FormatProxiesToDelete(proxies))
		return nil
	}

	if opts.ConfirmDelete {
		fmt.Fprint(o.out, o.formatter.FormatProxiesToDelete(proxies))
		if !o.confirm(fmt.Sprintf("Are you sure you want to delete %d proxy(ies)?", len(proxies))) {
			o.logger.Info().Msg("Deletion cancelled by user")
			return nil
		}
	}

	result := o.client.BatchDelete(ctx, proxies)

	o.logger.Info().
		Int("deleted", result.Deleted).
		Int("failed", len(result.Failed)).
		Msg("Deletion complete")

	for _, failure := range result.Failed {
		o.logger.Error().
			Err(failure.Err).
			Str("ids", failure.IDs.String()).
			Msg("Failed to delete proxies")
	}

	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to delete %d chunk(s): %w", len(result.Failed), err)
	}
	return nil
}

// QuoteProlong prices extending proxies by period. Proxies are grouped by
// version since the price depends on it.
func (o *Operations) QuoteProlong(ctx context.Context, proxies []ProxyInfo, period px6.Period) (*Quote, error) {
	byVersion := make(map[px6.ProxyVersion]int)
	for _, p := range proxies {
		byVersion[p.Version]++
	}

	quote := &Quote{}
	for version, count := range byVersion {
		res, err := o.client.GetPrice(ctx, px6.GetPriceParams{Count: count, Period: period, Version: version})
		if err != nil {
			return nil, err
		}
		quote.Price += res.Price.Float()
		quote.Currency = res.Currency
		quote.Balance = res.Balance.Float()
	}
	return quote, nil
}

// ProlongProxies extends the given proxies
func (o *Operations) ProlongProxies(ctx context.Context, proxies []ProxyInfo, opts ProlongOptions) (*px6.ProlongResult, error) {
	if len(proxies) == 0 {
		o.logger.Info().Msg("No proxies to prolong")
		return nil, nil
	}

	ids, err := proxyIDs(proxies)
	if err != nil {
		return nil, err
	}

	quote, err := o.QuoteProlong(ctx, proxies, opts.Period)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to quote prolongation")
		quote = nil
	}

	if opts.DryRun {
		o.logger.Info().Msg("DRY RUN MODE - No proxies will be prolonged")
		fmt.Fprint(o.out, o.formatter.FormatProxiesToProlong(proxies, opts.Period, quote))
		return nil, nil
	}

	if opts.Confirm {
		fmt.Fprint(o.out, o.formatter.FormatProxiesToProlong(proxies, opts.Period, quote))
		if !o.confirm(fmt.Sprintf("Prolong %d proxy(ies) by %d days?", len(proxies), opts.Period.Days())) {
			o.logger.Info().Msg("Prolongation cancelled by user")
			return nil, nil
		}
	}

	return o.client.Prolong(ctx, ids, opts.Period)
}

// BuyProxies checks availability and price, then places the order
func (o *Operations) BuyProxies(ctx context.Context, opts BuyOptions) (*px6.BuyResult, error) {
	available, err := o.client.GetCount(ctx, px6.GetCountParams{Country: opts.Country, Version: opts.Version})
	if err != nil {
		return nil, err
	}
	if available < opts.Count {
		return nil, fmt.Errorf("%w: %d requested in %s, %d available", ErrNotEnoughProxies, opts.Count, opts.Country, available)
	}

	price, err := o.client.GetPrice(ctx, px6.GetPriceParams{Count: opts.Count, Period: opts.Period, Version: opts.Version})
	if err != nil {
		return nil, err
	}
	quote := &Quote{
		Price:    price.Price.Float(),
		Currency: price.Currency,
		Balance:  price.Balance.Float(),
	}

	if opts.DryRun {
		o.logger.Info().Msg("DRY RUN MODE - No order will be placed")
		fmt.Fprint(o.out, o.formatter.FormatOrder(opts, quote, available))
		return nil, nil
	}

	if opts.Confirm {
		fmt.Fprint(o.out, o.formatter.FormatOrder(opts, quote, available))
		if !o.confirm(fmt.Sprintf("Buy %d proxy(ies) for %.2f %s?", opts.Count, quote.Price, quote.Currency)) {
			o.logger.Info().Msg("Order cancelled by user")
			return nil, nil
		}
	}

	return o.client.Buy(ctx, px6.BuyParams{
		Count:       opts.Count,
		Period:      opts.Period,
		Country:     opts.Country,
		Version:     opts.Version,
		Type:        opts.Type,
		Description: opts.Description,
		AutoProlong: opts.AutoProlong,
	})
}

// CheckProxies checks every proxy and prints the results
func (o *Operations) CheckProxies(ctx context.Context, proxies []ProxyInfo) BatchCheckResult {
	result := o.client.BatchCheck(ctx, proxies)
	fmt.Fprint(o.out, o.formatter.FormatCheckResults(result))
	return result
}

// confirm prompts the user for confirmation
func (o *Operations) confirm(question string) bool {
	fmt.Fprintf(o.out, "\n%s [y/N]: ", question)

	var response string
	_, _ = fmt.Fscanln(o.in, &response)

	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// sortByExpiry orders proxies soonest-expiring first, then by id
func sortByExpiry(proxies []ProxyInfo) {
	sort.SliceStable(proxies, func(i, j int) bool {
		if !proxies[i].Expires.Equal(proxies[j].Expires) {
			return proxies[i].Expires.Before(proxies[j].Expires)
		}
		return proxies[i].ID < proxies[j].ID
	})
}
