package px6

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Pair is one entry of a request query. A flag is rendered as a bare key.
type Pair struct {
	Key   string
	Value string
	Flag  bool
}

// Query is an ordered list of query parameters.
type Query []Pair

func (q Query) add(key, value string) Query {
	return append(q, Pair{Key: key, Value: value})
}

// addSet appends key only when v holds a value
func (q Query) addSet(key string, v interface {
	IsZero() bool
	String() string
}) Query {
	if v.IsZero() {
		return q
	}
	return q.add(key, v.String())
}

func (q Query) addEnum(key string, v interface{ String() string }) Query {
	if s := v.String(); s != "" {
		return q.add(key, s)
	}
	return q
}

func (q Query) flag(key string) Query {
	return append(q, Pair{Key: key, Flag: true})
}

// Keys returns the keys in order
func (q Query) Keys() []string {
	keys := make([]string, len(q))
	for i, p := range q {
		keys[i] = p.Key
	}
	return keys
}

// Get returns the value stored for key
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present, as a value or a flag
func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Encode renders the query string. Order is preserved and flags carry no "=".
func (q Query) Encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(escape(p.Key))
		if p.Flag {
			continue
		}
		sb.WriteByte('=')
		sb.WriteString(escape(p.Value))
	}
	return sb.String()
}

// escape percent-encodes s, leaving unreserved characters plus ',' and ':'
// intact so id lists and proxy strings stay readable.
func escape(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == ',', c == ':':
			sb.WriteByte(c)
		default:
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0x0f])
		}
	}
	return sb.String()
}

// Params is implemented by every operation's parameter struct.
type Params interface {
	// Validate reports unset required fields and broken either/or constraints
	Validate() error
	// Query renders the parameters in wire order, omitting unset fields
	Query() Query
}

var (
	errRequired = validation.NewError("validation_required", "is required")
	errOneOf    = validation.NewError("validation_one_of", "one of them is required")
)

// set rejects a validated scalar left at its zero value
var set = validation.By(func(value any) error {
	if z, ok := value.(interface{ IsZero() bool }); ok && z.IsZero() {
		return errRequired
	}
	return nil
})

func oneOf(values ...interface{ IsZero() bool }) error {
	for _, v := range values {
		if !v.IsZero() {
			return nil
		}
	}
	return errOneOf
}

// paramsError converts ozzo-validation output into a *ValidationError naming
// the first offending field in key order.
func paramsError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		field := slices.Sorted(maps.Keys(errs))[0]
		return &ValidationError{Field: field, Reason: errs[field].Error(), Err: err}
	}
	return &ValidationError{Reason: err.Error(), Err: err}
}

// GetPriceParams asks for the cost of an order.
type GetPriceParams struct {
	Count   int
	Period  Period
	Version ProxyVersion
}

func (p GetPriceParams) Validate() error {
	return paramsError(validation.Errors{
		"count":   validation.Validate(p.Count, validation.Required, validation.Min(1)),
		"period":  validation.Validate(p.Period, set),
		"version": validation.Validate(p.Version),
	}.Filter())
}

func (p GetPriceParams) Query() Query {
	var q Query
	q = q.add("count", strconv.Itoa(p.Count))
	q = q.addSet("period", p.Period)
	q = q.addEnum("version", p.Version)
	return q
}

// GetCountParams asks how many proxies are available in a country.
type GetCountParams struct {
	Country Country
	Version ProxyVersion
}

func (p GetCountParams) Validate() error {
	return paramsError(validation.Errors{
		"country": validation.Validate(p.Country, set),
		"version": validation.Validate(p.Version),
	}.Filter())
}

func (p GetCountParams) Query() Query {
	var q Query
	q = q.addSet("country", p.Country)
	q = q.addEnum("version", p.Version)
	return q
}

// GetCountryParams asks for the countries proxies can be bought in.
type GetCountryParams struct {
	Version ProxyVersion
}

func (p GetCountryParams) Validate() error {
	return paramsError(validation.Errors{
		"version": validation.Validate(p.Version),
	}.Filter())
}

func (p GetCountryParams) Query() Query {
	var q Query
	q = q.addEnum("version", p.Version)
	return q
}

// GetProxyParams lists the account's proxies. The list is always requested
// as a JSON array.
type GetProxyParams struct {
	State       ProxyState
	Description Description
	Page        int
	Limit       PageLimit
}

func (p GetProxyParams) Validate() error {
	return paramsError(validation.Errors{
		"state": validation.Validate(p.State),
		"page":  validation.Validate(p.Page, validation.Min(1)),
	}.Filter())
}

func (p GetProxyParams) Query() Query {
	var q Query
	q = q.addEnum("state", p.State)
	q = q.addSet("descr", p.Description)
	if p.Page > 0 {
		q = q.add("page", strconv.Itoa(p.Page))
	}
	q = q.addSet("limit", p.Limit)
	q = q.flag("nokey")
	return q
}

// SetTypeParams switches the protocol of existing proxies.
type SetTypeParams struct {
	IDs  ProxyIDs
	Type ProxyType
}

func (p SetTypeParams) Validate() error {
	return paramsError(validation.Errors{
		"ids":  validation.Validate(p.IDs, set),
		"type": validation.Validate(p.Type, validation.Required),
	}.Filter())
}

func (p SetTypeParams) Query() Query {
	var q Query
	q = q.addSet("ids", p.IDs)
	q = q.addEnum("type", p.Type)
	return q
}

// SetDescriptionParams replaces the description of proxies selected either by
// their current description or by id.
type SetDescriptionParams struct {
	New Description
	Old Description
	IDs ProxyIDs
}

func (p SetDescriptionParams) Validate() error {
	return paramsError(validation.Errors{
		"new":     validation.Validate(p.New, set),
		"old|ids": oneOf(p.Old, p.IDs),
	}.Filter())
}

func (p SetDescriptionParams) Query() Query {
	var q Query
	q = q.addSet("new", p.New)
	q = q.addSet("old", p.Old)
	q = q.addSet("ids", p.IDs)
	return q
}

// BuyParams places an order for new proxies.
type BuyParams struct {
	Count       int
	Period      Period
	Country     Country
	Version     ProxyVersion
	Type        ProxyType
	Description Description
	AutoProlong bool
}

func (p BuyParams) Validate() error {
	return paramsError(validation.Errors{
		"count":   validation.Validate(p.Count, validation.Required, validation.Min(1)),
		"period":  validation.Validate(p.Period, set),
		"country": validation.Validate(p.Country, set),
		"version": validation.Validate(p.Version),
		"type":    validation.Validate(p.Type),
	}.Filter())
}

func (p BuyParams) Query() Query {
	var q Query
	q = q.add("count", strconv.Itoa(p.Count))
	q = q.addSet("period", p.Period)
	q = q.addSet("country", p.Country)
	q = q.addEnum("version", p.Version)
	q = q.addEnum("type", p.Type)
	q = q.addSet("descr", p.Description)
	if p.AutoProlong {
		q = q.flag("auto_prolong")
	}
	q = q.flag("nokey")
	return q
}

// ProlongParams extends existing proxies.
type ProlongParams struct {
	Period Period
	IDs    ProxyIDs
}

func (p ProlongParams) Validate() error {
	return paramsError(validation.Errors{
		"period": validation.Validate(p.Period, set),
		"ids":    validation.Validate(p.IDs, set),
	}.Filter())
}

func (p ProlongParams) Query() Query {
	var q Query
	q = q.addSet("period", p.Period)
	q = q.addSet("ids", p.IDs)
	q = q.flag("nokey")
	return q
}

// DeleteParams removes proxies selected by id or by description.
type DeleteParams struct {
	IDs         ProxyIDs
	Description Description
}

func (p DeleteParams) Validate() error {
	return paramsError(validation.Errors{
		"ids|descr": oneOf(p.IDs, p.Description),
	}.Filter())
}

func (p DeleteParams) Query() Query {
	var q Query
	q = q.addSet("ids", p.IDs)
	q = q.addSet("descr", p.Description)
	return q
}

// CheckParams checks proxies selected by id or a single proxy string.
type CheckParams struct {
	IDs   ProxyIDs
	Proxy ProxyString
}

func (p CheckParams) Validate() error {
	return paramsError(validation.Errors{
		"ids|proxy": oneOf(p.IDs, p.Proxy),
	}.Filter())
}

func (p CheckParams) Query() Query {
	var q Query
	q = q.addSet("ids", p.IDs)
	q = q.addSet("proxy", p.Proxy)
	return q
}

// IPAuthParams binds or unbinds addresses for login-free proxy access.
type IPAuthParams struct {
	Target IPAuth
}

func (p IPAuthParams) Validate() error {
	return paramsError(validation.Errors{
		"ip": validation.Validate(p.Target, set),
	}.Filter())
}

func (p IPAuthParams) Query() Query {
	var q Query
	q = q.addSet("ip", p.Target)
	return q
}
