package px6

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// FlexInt decodes a JSON number or a numeric string.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as integer", s)
		}
		*n = FlexInt(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// Int returns the value as an int
func (n FlexInt) Int() int { return int(n) }

// FlexFloat decodes a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as number", s)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Float returns the value as a float64
func (f FlexFloat) Float() float64 { return float64(f) }

// FlexBool decodes true/false, 1/0 and "1"/"0".
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, `""`, "null":
		*b = false
	default:
		return fmt.Errorf("cannot parse %s as boolean", data)
	}
	return nil
}

// FlexString decodes a JSON string or number into its textual form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// Timestamp decodes unix seconds given as a number or a numeric string.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var n FlexInt
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	if n == 0 {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.Unix(int64(n), 0).UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// Account is the envelope every successful response carries.
type Account struct {
	UserID   FlexString `json:"user_id"`
	Balance  FlexFloat  `json:"balance"`
	Currency string     `json:"currency"`
}

// Proxy is one proxy record as returned by getproxy and buy.
type Proxy struct {
	ID          FlexString   `json:"id"`
	Version     ProxyVersion `json:"version"`
	IP          string       `json:"ip"`
	Host        string       `json:"host"`
	Port        FlexInt      `json:"port"`
	User        string       `json:"user"`
	Pass        string       `json:"pass"`
	Type        ProxyType    `json:"type"`
	Country     string       `json:"country"`
	Date        string       `json:"date"`
	DateEnd     string       `json:"date_end"`
	Unixtime    Timestamp    `json:"unixtime"`
	UnixtimeEnd Timestamp    `json:"unixtime_end"`
	Description string       `json:"descr"`
	Active      FlexBool     `json:"active"`
}

// ProxyList accepts both shapes of the list field: a JSON array when nokey is
// sent, an object keyed by proxy id otherwise.
type ProxyList []Proxy

func (l *ProxyList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty list")
	}
	switch data[0] {
	case '[':
		var items []Proxy
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	case '{':
		var keyed map[string]Proxy
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}
		items := make([]Proxy, 0, len(keyed))
		for id, p := range keyed {
			if p.ID == "" {
				p.ID = FlexString(id)
			}
			items = append(items, p)
		}
		sortProxies(items)
		*l = items
		return nil
	default:
		return fmt.Errorf("list must be an array or an object, got %s", data[:1])
	}
}

// GetPriceResult is the response to getprice.
type GetPriceResult struct {
	Account
	Price       FlexFloat `json:"price"`
	PriceSingle FlexFloat `json:"price_single"`
	Period      FlexInt   `json:"period"`
	Count       FlexInt   `json:"count"`
}

// GetCountResult is the response to getcount.
type GetCountResult struct {
	Account
	Count FlexInt `json:"count"`
}

// GetCountryResult is the response to getcountry.
type GetCountryResult struct {
	Account
	List []string `json:"list"`
}

// GetProxyResult is the response to getproxy.
type GetProxyResult struct {
	Account
	ListCount FlexInt   `json:"list_count"`
	List      ProxyList `json:"list"`
}

// SetTypeResult is the response to settype.
type SetTypeResult struct {
	Account
}

// SetDescriptionResult is the response to setdescr.
type SetDescriptionResult struct {
	Account
	Count FlexInt `json:"count"`
}

// BuyResult is the response to buy.
type BuyResult struct {
	Account
	Count   FlexInt   `json:"count"`
	Price   FlexFloat `json:"price"`
	Period  FlexInt   `json:"period"`
	Country string    `json:"country"`
	List    ProxyList `json:"list"`
}

// ProlongedProxy is one entry of a prolong response.
type ProlongedProxy struct {
	ID          FlexString `json:"id"`
	DateEnd     string     `json:"date_end"`
	UnixtimeEnd Timestamp  `json:"unixtime_end"`
}

// ProlongList accepts an array or an id-keyed object, like ProxyList.
type ProlongList []ProlongedProxy

func (l *ProlongList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var keyed map[string]ProlongedProxy
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}
		items := make([]ProlongedProxy, 0, len(keyed))
		for id, p := range keyed {
			if p.ID == "" {
				p.ID = FlexString(id)
			}
			items = append(items, p)
		}
		sortProlonged(items)
		*l = items
		return nil
	}
	var items []ProlongedProxy
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// ProlongResult is the response to prolong.
type ProlongResult struct {
	Account
	Price  FlexFloat   `json:"price"`
	Period FlexInt     `json:"period"`
	Count  FlexInt     `json:"count"`
	List   ProlongList `json:"list"`
}

// DeleteResult is the response to delete.
type DeleteResult struct {
	Account
	Count FlexInt `json:"count"`
}

// CheckResult is the response to check.
type CheckResult struct {
	Account
	ProxyID     FlexString `json:"proxy_id"`
	ProxyStatus FlexBool   `json:"proxy_status"`
}

// IPAuthResult is the response to ipauth.
type IPAuthResult struct {
	Account
}

func sortProxies(items []Proxy) {
	slices.SortFunc(items, func(a, b Proxy) int { return compareIDs(string(a.ID), string(b.ID)) })
}

func sortProlonged(items []ProlongedProxy) {
	slices.SortFunc(items, func(a, b ProlongedProxy) int { return compareIDs(string(a.ID), string(b.ID)) })
}

// compareIDs orders numeric ids numerically and everything else lexically
func compareIDs(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return cmp.Compare(a, b)
}
