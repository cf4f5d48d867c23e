package proxies

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/px6ctl/px6"
)

const (
	// DefaultConcurrency bounds concurrent read-only calls
	DefaultConcurrency = 5
	// DeleteChunkSize is the number of ids sent in one delete call
	DeleteChunkSize = 100
)

// CheckResult is the outcome of checking one proxy
type CheckResult struct {
	Proxy   ProxyInfo
	Working bool
	Err     error
}

// BatchCheckResult contains the results of a batch check
type BatchCheckResult struct {
	Requested int
	Results   []CheckResult
	err       *multierror.Error
}

// Working returns the number of proxies reported as working
func (r BatchCheckResult) Working() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil && res.Working {
			n++
		}
	}
	return n
}

// Err returns every failed check combined, or nil
func (r BatchCheckResult) Err() error {
	return r.err.ErrorOrNil()
}

// BatchCheck checks proxies concurrently. Individual failures do not stop
// the batch.
func (c *Client) BatchCheck(ctx context.Context, proxies []ProxyInfo) BatchCheckResult {
	result := BatchCheckResult{
		Requested: len(proxies),
		Results:   make([]CheckResult, len(proxies)),
	}
	if len(proxies) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	var mu sync.Mutex
	for i, proxy := range proxies {
		g.Go(func() error {
			res := CheckResult{Proxy: proxy}

			id, err := px6.NewProxyIDs(proxy.ID)
			if err == nil {
				res.Working, err = c.Check(ctx, px6.CheckParams{IDs: id})
			}
			if err != nil {
				res.Err = err
				mu.Lock()
				result.err = multierror.Append(result.err, fmt.Errorf("proxy %s: %w", proxy.ID, err))
				mu.Unlock()
			}

			result.Results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// BatchDeleteResult contains the results of a batch delete
type BatchDeleteResult struct {
	Requested int
	Deleted   int
	Failed    []DeleteError
}

// DeleteError contains information about a failed delete chunk
type DeleteError struct {
	IDs px6.ProxyIDs
	Err error
}

// Error implements the error interface
func (e DeleteError) Error() string {
	return fmt.Sprintf("failed to delete proxies %s: %v", e.IDs, e.Err)
}

func (e DeleteError) Unwrap() error { return e.Err }

// Err combines every failed chunk, or returns nil
func (r BatchDeleteResult) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failed {
		merr = multierror.Append(merr, f)
	}
	return merr.ErrorOrNil()
}

// BatchDelete deletes proxies in chunks of DeleteChunkSize ids
func (c *Client) BatchDelete(ctx context.Context, proxies []ProxyInfo) BatchDeleteResult {
	result := BatchDeleteResult{Requested: len(proxies)}
	if len(proxies) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2) // Lower limit for operations that change the account

	var mu sync.Mutex
	for start := 0; start < len(proxies); start += DeleteChunkSize {
		end := min(start+DeleteChunkSize, len(proxies))
		chunk := proxies[start:end]

		g.Go(func() error {
			ids, err := proxyIDs(chunk)
			var deleted int
			if err == nil {
				deleted, err = c.Delete(ctx, ids)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, DeleteError{IDs: ids, Err: err})
				return nil
			}
			result.Deleted += deleted
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// CountryCount is the availability of one country
type CountryCount struct {
	Country   string `json:"country" yaml:"country"`
	Available int    `json:"available" yaml:"available"`
}

// CountryAvailability lists the countries for version together with how many
// proxies each has available. Lookups run through the async client when one
// is configured, at most DefaultConcurrency at a time.
func (c *Client) CountryAvailability(ctx context.Context, version px6.ProxyVersion) ([]CountryCount, error) {
	countries, err := c.GetCountries(ctx, version)
	if err != nil {
		return nil, err
	}

	counts := make([]CountryCount, 0, len(countries))
	var merr *multierror.Error

	if c.counts == nil {
		for _, code := range countries {
			params, err := countParams(code, version)
			if err == nil {
				var n int
				if n, err = c.GetCount(ctx, params); err == nil {
					counts = append(counts, CountryCount{Country: code, Available: n})
					continue
				}
			}
			merr = multierror.Append(merr, err)
		}
		return sortCounts(counts), merr.ErrorOrNil()
	}

	var g errgroup.Group
	g.SetLimit(DefaultConcurrency)

	var mu sync.Mutex
	for _, code := range countries {
		params, err := countParams(code, version)
		if err != nil {
			mu.Lock()
			merr = multierror.Append(merr, err)
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			n, err := c.asyncCount(ctx, params)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("failed to get count for %s: %w", code, err))
				return nil
			}
			counts = append(counts, CountryCount{Country: code, Available: n})
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Debug().Int("countries", len(counts)).Msg("Fetched country availability")
	return sortCounts(counts), merr.ErrorOrNil()
}

// asyncCount runs one lookup through the async client, falling back to the
// blocking path, which backs off, when the API answers 429.
func (c *Client) asyncCount(ctx context.Context, params px6.GetCountParams) (int, error) {
	res, err := c.counts.GetCount(ctx, params).Wait(ctx)
	if px6.KindOf(err) == px6.KindRateLimited {
		return c.GetCount(ctx, params)
	}
	if err != nil {
		return 0, err
	}
	return res.Count.Int(), nil
}

func countParams(code string, version px6.ProxyVersion) (px6.GetCountParams, error) {
	country, err := px6.NewCountry(code)
	if err != nil {
		return px6.GetCountParams{}, fmt.Errorf("country %q: %w", code, err)
	}
	return px6.GetCountParams{Country: country, Version: version}, nil
}

func sortCounts(counts []CountryCount) []CountryCount {
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Country < counts[j].Country
	})
	return counts
}
