package filter

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/s0up4200/px6ctl/proxies"
)

var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles expression with the shared, cached compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// ParseAndCreateFilter parses a filter expression and returns a filter function.
// An empty expression matches every proxy.
func ParseAndCreateFilter(expression string) (func(proxies.ProxyInfo) bool, error) {
	if strings.TrimSpace(expression) == "" {
		return func(proxies.ProxyInfo) bool { return true }, nil
	}

	filter, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}
	return filter.Evaluate, nil
}

// Apply returns the proxies matching filter. Proxies the filter fails on are
// left out and their errors combined.
func Apply(filter CompiledFilter, list []proxies.ProxyInfo) ([]proxies.ProxyInfo, error) {
	var (
		matches []proxies.ProxyInfo
		merr    *multierror.Error
	)
	for _, proxy := range list {
		ok, err := filter.Match(proxy)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		if ok {
			matches = append(matches, proxy)
		}
	}
	return matches, merr.ErrorOrNil()
}
