package px6

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Bounds accepted by the API.
const (
	MinPeriod         = 1
	MaxPeriod         = 365
	MinPageLimit      = 1
	MaxPageLimit      = 1000
	MaxDescriptionLen = 50

	ipAuthRemove = "delete"
)

var (
	countryPattern = regexp.MustCompile(`^[a-z]{2}$`)
	proxyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// descriptionReserved are characters that change the meaning of a query string
	descriptionReserved = "&=?#%+"

	errReserved  = validation.NewError("validation_reserved_chars", "must not contain control characters or any of "+descriptionReserved)
	errDuplicate = validation.NewError("validation_duplicate", "must not contain duplicates")
	errIPAddress = validation.NewError("validation_ip", "must be a valid IP address")
	errPort      = validation.NewError("validation_port", "must be a port number between 1 and 65535")
)

// newValidationError turns an ozzo-validation error into a *ValidationError
func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

// Country is an ISO 3166-1 alpha-2 code in lower case, e.g. "us".
type Country struct {
	code string
}

// NewCountry validates raw as a two-letter lowercase country code.
// Upper-case input is rejected rather than folded.
func NewCountry(raw string) (Country, error) {
	err := validation.Validate(raw,
		validation.Required,
		validation.Match(countryPattern).Error("must be two lowercase letters"),
	)
	if err != nil {
		return Country{}, newValidationError("country", err)
	}
	return Country{code: raw}, nil
}

func (c Country) String() string { return c.code }

// IsZero reports whether the country is unset
func (c Country) IsZero() bool { return c.code == "" }

// Period is a rental period in days.
type Period struct {
	days int
}

// NewPeriod validates days against the accepted range
func NewPeriod(days int) (Period, error) {
	err := validation.Validate(days,
		validation.Required.Error(fmt.Sprintf("must be between %d and %d days", MinPeriod, MaxPeriod)),
		validation.Min(MinPeriod),
		validation.Max(MaxPeriod),
	)
	if err != nil {
		return Period{}, newValidationError("period", err)
	}
	return Period{days: days}, nil
}

// Days returns the period length
func (p Period) Days() int { return p.days }

func (p Period) String() string { return strconv.Itoa(p.days) }

// IsZero reports whether the period is unset
func (p Period) IsZero() bool { return p.days == 0 }

// PageLimit is the number of proxies returned per getproxy page.
type PageLimit struct {
	n int
}

// NewPageLimit validates n against the accepted page size range
func NewPageLimit(n int) (PageLimit, error) {
	err := validation.Validate(n,
		validation.Required.Error(fmt.Sprintf("must be between %d and %d", MinPageLimit, MaxPageLimit)),
		validation.Min(MinPageLimit),
		validation.Max(MaxPageLimit),
	)
	if err != nil {
		return PageLimit{}, newValidationError("limit", err)
	}
	return PageLimit{n: n}, nil
}

// Int returns the limit
func (l PageLimit) Int() int { return l.n }

func (l PageLimit) String() string { return strconv.Itoa(l.n) }

// IsZero reports whether the limit is unset
func (l PageLimit) IsZero() bool { return l.n == 0 }

// Description is the technical comment attached to proxies.
type Description struct {
	text string
}

// NewDescription validates a proxy description
func NewDescription(raw string) (Description, error) {
	err := validation.Validate(raw,
		validation.Required,
		validation.RuneLength(1, MaxDescriptionLen),
		validation.By(queryText),
	)
	if err != nil {
		return Description{}, newValidationError("descr", err)
	}
	return Description{text: raw}, nil
}

func (d Description) String() string { return d.text }

// IsZero reports whether the description is unset
func (d Description) IsZero() bool { return d.text == "" }

func queryText(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, descriptionReserved) {
		return errReserved
	}
	if strings.ContainsFunc(s, unicode.IsControl) {
		return errReserved
	}
	return nil
}

// ProxyID identifies a purchased proxy.
type ProxyID struct {
	id string
}

// NewProxyID validates a single proxy identifier
func NewProxyID(raw string) (ProxyID, error) {
	if err := validation.Validate(raw, proxyIDRules...); err != nil {
		return ProxyID{}, newValidationError("id", err)
	}
	return ProxyID{id: raw}, nil
}

var proxyIDRules = []validation.Rule{
	validation.Required,
	validation.Match(proxyIDPattern).Error("must contain only letters, digits, '-' and '_'"),
}

func (id ProxyID) String() string { return id.id }

// IsZero reports whether the id is unset
func (id ProxyID) IsZero() bool { return id.id == "" }

// ProxyIDs is a non-empty list of distinct proxy identifiers.
type ProxyIDs struct {
	ids []ProxyID
}

// NewProxyIDs validates every identifier and the list as a whole
func NewProxyIDs(raw ...string) (ProxyIDs, error) {
	err := validation.Validate(raw,
		validation.Required.Error("must contain at least one id"),
		validation.Each(proxyIDRules...),
		validation.By(distinct),
	)
	if err != nil {
		return ProxyIDs{}, newValidationError("ids", err)
	}

	ids := make([]ProxyID, len(raw))
	for i, s := range raw {
		ids[i] = ProxyID{id: s}
	}
	return ProxyIDs{ids: ids}, nil
}

// ParseProxyIDs splits a comma-separated list and validates it. Blank
// entries between commas are rejected.
func ParseProxyIDs(list string) (ProxyIDs, error) {
	if strings.TrimSpace(list) == "" {
		return NewProxyIDs()
	}
	parts := strings.Split(list, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return NewProxyIDs(parts...)
}

func distinct(value any) error {
	raw, _ := value.([]string)
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		if _, ok := seen[s]; ok {
			return errDuplicate
		}
		seen[s] = struct{}{}
	}
	return nil
}

// IDs returns a copy of the identifiers
func (p ProxyIDs) IDs() []ProxyID { return slices.Clone(p.ids) }

// Strings returns the identifiers as plain strings
func (p ProxyIDs) Strings() []string {
	out := make([]string, len(p.ids))
	for i, id := range p.ids {
		out[i] = id.id
	}
	return out
}

// Len returns the number of identifiers
func (p ProxyIDs) Len() int { return len(p.ids) }

// String renders the list in wire form, comma-joined
func (p ProxyIDs) String() string { return strings.Join(p.Strings(), ",") }

// IsZero reports whether the list is unset
func (p ProxyIDs) IsZero() bool { return len(p.ids) == 0 }

// ProxyString is a proxy in ip:port:user:pass form, as accepted by check.
type ProxyString struct {
	ip   netip.Addr
	port int
	user string
	pass string
}

type proxyStringParts struct {
	IP   string `json:"ip"`
	Port string `json:"port"`
	User string `json:"user"`
	Pass string `json:"pass"`
}

// NewProxyString validates raw as ip:port:user:pass
func NewProxyString(raw string) (ProxyString, error) {
	fields := strings.Split(raw, ":")
	if len(fields) != 4 {
		return ProxyString{}, &ValidationError{Field: "proxy", Reason: "must be in ip:port:user:pass form"}
	}

	parts := proxyStringParts{IP: fields[0], Port: fields[1], User: fields[2], Pass: fields[3]}
	err := validation.ValidateStruct(&parts,
		validation.Field(&parts.IP, validation.Required, validation.By(ipAddress)),
		validation.Field(&parts.Port, validation.Required, validation.By(portNumber)),
		validation.Field(&parts.User, validation.Required),
		validation.Field(&parts.Pass, validation.Required),
	)
	if err != nil {
		return ProxyString{}, newValidationError("proxy", err)
	}

	addr, _ := netip.ParseAddr(parts.IP)
	port, _ := strconv.Atoi(parts.Port)
	return ProxyString{ip: addr, port: port, user: parts.User, pass: parts.Pass}, nil
}

func ipAddress(value any) error {
	s, _ := value.(string)
	if _, err := netip.ParseAddr(s); err != nil {
		return errIPAddress
	}
	return nil
}

func portNumber(value any) error {
	s, _ := value.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errPort
	}
	return nil
}

// Addr returns the proxy IP
func (p ProxyString) Addr() netip.Addr { return p.ip }

// Port returns the proxy port
func (p ProxyString) Port() int { return p.port }

// User returns the proxy login
func (p ProxyString) User() string { return p.user }

func (p ProxyString) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%s:%s", p.ip, p.port, p.user, p.pass)
}

// IsZero reports whether the proxy string is unset
func (p ProxyString) IsZero() bool { return !p.ip.IsValid() }

// IPAuth is the target of an ipauth call: either a set of addresses allowed
// to use proxies without a login, or removal of every bound address.
type IPAuth struct {
	remove bool
	ips    []netip.Addr
}

// NewIPAuth validates a non-empty list of IP addresses
func NewIPAuth(ips ...string) (IPAuth, error) {
	err := validation.Validate(ips,
		validation.Required.Error("must contain at least one address"),
		validation.Each(validation.Required, validation.By(ipAddress)),
	)
	if err != nil {
		return IPAuth{}, newValidationError("ip", err)
	}

	addrs := make([]netip.Addr, 0, len(ips))
	for _, s := range ips {
		addr, _ := netip.ParseAddr(s)
		addrs = append(addrs, addr)
	}
	return IPAuth{ips: addrs}, nil
}

// RemoveIPAuth returns the target that unbinds every address
func RemoveIPAuth() IPAuth {
	return IPAuth{remove: true}
}

// Remove reports whether the target unbinds every address
func (a IPAuth) Remove() bool { return a.remove }

// Addrs returns a copy of the addresses
func (a IPAuth) Addrs() []netip.Addr { return slices.Clone(a.ips) }

// String renders the target in wire form
func (a IPAuth) String() string {
	if a.remove {
		return ipAuthRemove
	}
	parts := make([]string, len(a.ips))
	for i, ip := range a.ips {
		parts[i] = ip.String()
	}
	return strings.Join(parts, ",")
}

// IsZero reports whether the target is unset
func (a IPAuth) IsZero() bool { return !a.remove && len(a.ips) == 0 }

// AsValidationError extracts a *ValidationError from err
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
