package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/px6ctl/proxies"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
	now        func() time.Time
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[string, CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// WithClock sets the time source used by date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		c.now = now
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: make(map[string]any, 32),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Built-in helpers win over custom ones of the same name
	addHelperFunctions(c.helperFuncs, c.now)

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[string, CompiledFilter]
	now         func() time.Time
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile with static environment for validation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // Allow proxy properties
		expr.AsBool(),                  // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
		now:        c.now,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a proxy. Evaluation errors count as
// no match.
func (f *exprFilter) Evaluate(proxy proxies.ProxyInfo) bool {
	ok, err := f.Match(proxy)
	return err == nil && ok
}

// Match evaluates the filter and reports evaluation errors
func (f *exprFilter) Match(proxy proxies.ProxyInfo) (bool, error) {
	env := createRuntimeEnvironment(proxy, f.helpers, f.now())

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ProxyID:    proxy.ID,
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// addHelperFunctions adds the proxy-independent helpers to env
func addHelperFunctions(env map[string]any, now func() time.Time) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(now().Sub(t).Hours() / 24)
	}
	env["daysUntil"] = func(t time.Time) int {
		return int(t.Sub(now()).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return now().AddDate(0, 0, -days)
	}
	env["daysFromNow"] = func(days int) time.Time {
		return now().AddDate(0, 0, days)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = now
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(proxy proxies.ProxyInfo, helpers map[string]any, now time.Time) map[string]any {
	env := make(map[string]any, len(helpers)+24)
	maps.Copy(env, helpers)

	env["Proxy"] = proxy

	// Proxy-specific helpers
	env["expiresWithin"] = createExpiresWithinFunc(proxy, now)
	env["inCountry"] = createInCountryFunc(proxy.Country)
	env["hasDescription"] = createHasDescriptionFunc(proxy.Description)
	env["isVersion"] = createIsVersionFunc(proxy)
	env["isType"] = createIsTypeFunc(proxy)

	// Direct proxy properties for convenience
	env["ID"] = proxy.ID
	env["IP"] = proxy.IP
	env["Host"] = proxy.Host
	env["Port"] = proxy.Port
	env["User"] = proxy.User
	env["Country"] = proxy.Country
	env["Description"] = proxy.Description
	env["Version"] = proxy.Version.Name()
	env["Type"] = proxy.Type.String()
	env["Active"] = proxy.Active
	env["Bought"] = proxy.Bought
	env["Expires"] = proxy.Expires
	env["Expired"] = proxy.Expired(now)
	env["DaysLeft"] = proxy.DaysLeft(now)

	return env
}

func createExpiresWithinFunc(proxy proxies.ProxyInfo, now time.Time) func(int) bool {
	return func(days int) bool {
		if proxy.Expires.IsZero() || proxy.Expired(now) {
			return false
		}
		return !proxy.Expires.After(now.AddDate(0, 0, days))
	}
}

func createInCountryFunc(country string) func(...string) bool {
	return func(codes ...string) bool {
		return slices.ContainsFunc(codes, func(code string) bool {
			return strings.EqualFold(code, country)
		})
	}
}

func createHasDescriptionFunc(description string) func(string) bool {
	return func(text string) bool {
		return strings.EqualFold(description, text)
	}
}

func createIsVersionFunc(proxy proxies.ProxyInfo) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(proxy.Version.Name(), name) || proxy.Version.String() == name
	}
}

func createIsTypeFunc(proxy proxies.ProxyInfo) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(proxy.Type.String(), name)
	}
}
