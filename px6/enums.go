package px6

import (
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errUnknownEnum = validation.NewError("validation_enum", "is not a supported value")

// ProxyVersion selects the IP family of a proxy. The zero value means unset.
type ProxyVersion int

const (
	ProxyVersionIPv4 ProxyVersion = iota + 1
	ProxyVersionIPv4Shared
	ProxyVersionIPv6
)

var proxyVersionWire = map[ProxyVersion]string{
	ProxyVersionIPv4:       "4",
	ProxyVersionIPv4Shared: "3",
	ProxyVersionIPv6:       "6",
}

var proxyVersionNames = map[ProxyVersion]string{
	ProxyVersionIPv4:       "ipv4",
	ProxyVersionIPv4Shared: "ipv4-shared",
	ProxyVersionIPv6:       "ipv6",
}

// ParseProxyVersion accepts either the name ("ipv6") or the wire value ("6")
func ParseProxyVersion(s string) (ProxyVersion, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, name := range proxyVersionNames {
		if s == name || s == proxyVersionWire[v] {
			return v, nil
		}
	}
	return 0, &ValidationError{Field: "version", Reason: fmt.Sprintf("unknown proxy version %q", s), Err: errUnknownEnum}
}

// String returns the wire value
func (v ProxyVersion) String() string { return proxyVersionWire[v] }

// Name returns the human readable name
func (v ProxyVersion) Name() string { return proxyVersionNames[v] }

// Validate lets ozzo-validation reject out-of-range values
func (v ProxyVersion) Validate() error {
	if _, ok := proxyVersionWire[v]; v != 0 && !ok {
		return errUnknownEnum
	}
	return nil
}

// UnmarshalJSON accepts the version as a number or a string
func (v *ProxyVersion) UnmarshalJSON(data []byte) error {
	var raw FlexString
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*v = 0
		return nil
	}
	parsed, err := ParseProxyVersion(string(raw))
	if err != nil {
		// a server value is a decode failure, not a local validation error
		return fmt.Errorf("unknown proxy version %q", string(raw))
	}
	*v = parsed
	return nil
}

// MarshalJSON writes the human readable name
func (v ProxyVersion) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Name())
}

// MarshalText writes the human readable name for text encoders such as YAML
func (v ProxyVersion) MarshalText() ([]byte, error) {
	return []byte(v.Name()), nil
}

// ProxyType selects the proxy protocol. The zero value means unset.
type ProxyType int

const (
	ProxyTypeHTTP ProxyType = iota + 1
	ProxyTypeSOCKS
)

var proxyTypeWire = map[ProxyType]string{
	ProxyTypeHTTP:  "http",
	ProxyTypeSOCKS: "socks",
}

// ParseProxyType parses "http" or "socks"
func ParseProxyType(s string) (ProxyType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range proxyTypeWire {
		if s == name {
			return t, nil
		}
	}
	return 0, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown proxy type %q", s), Err: errUnknownEnum}
}

// String returns the wire value
func (t ProxyType) String() string { return proxyTypeWire[t] }

// Validate lets ozzo-validation reject out-of-range values
func (t ProxyType) Validate() error {
	if _, ok := proxyTypeWire[t]; t != 0 && !ok {
		return errUnknownEnum
	}
	return nil
}

// UnmarshalJSON accepts the protocol name
func (t *ProxyType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*t = 0
		return nil
	}
	parsed, err := ParseProxyType(raw)
	if err != nil {
		return fmt.Errorf("unknown proxy type %q", raw)
	}
	*t = parsed
	return nil
}

// MarshalJSON writes the protocol name
func (t ProxyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// MarshalText writes the protocol name
func (t ProxyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ProxyState filters getproxy results. The zero value means unset, which the
// API treats as all. Lapsed proxies are requested with the provider's value
// "expired"; "inactive" is accepted as an alias when parsing.
type ProxyState int

const (
	ProxyStateActive ProxyState = iota + 1
	ProxyStateExpired
	ProxyStateExpiring
	ProxyStateAll
)

var proxyStateWire = map[ProxyState]string{
	ProxyStateActive:   "active",
	ProxyStateExpired:  "expired",
	ProxyStateExpiring: "expiring",
	ProxyStateAll:      "all",
}

// ParseProxyState parses active, expired (or inactive), expiring or all
func ParseProxyState(s string) (ProxyState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "inactive" {
		return ProxyStateExpired, nil
	}
	for st, name := range proxyStateWire {
		if s == name {
			return st, nil
		}
	}
	return 0, &ValidationError{Field: "state", Reason: fmt.Sprintf("unknown proxy state %q", s), Err: errUnknownEnum}
}

// String returns the wire value
func (s ProxyState) String() string { return proxyStateWire[s] }

// Validate lets ozzo-validation reject out-of-range values
func (s ProxyState) Validate() error {
	if _, ok := proxyStateWire[s]; s != 0 && !ok {
		return errUnknownEnum
	}
	return nil
}
