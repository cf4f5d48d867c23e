package px6

// Method is an API method name, as it appears in the request path.
type Method string

const (
	MethodGetPrice       Method = "getprice"
	MethodGetCount       Method = "getcount"
	MethodGetCountry     Method = "getcountry"
	MethodGetProxy       Method = "getproxy"
	MethodSetType        Method = "settype"
	MethodSetDescription Method = "setdescr"
	MethodBuy            Method = "buy"
	MethodProlong        Method = "prolong"
	MethodDelete         Method = "delete"
	MethodCheck          Method = "check"
	MethodIPAuth         Method = "ipauth"
)

// Methods lists every method the client implements
var Methods = []Method{
	MethodGetPrice,
	MethodGetCount,
	MethodGetCountry,
	MethodGetProxy,
	MethodSetType,
	MethodSetDescription,
	MethodBuy,
	MethodProlong,
	MethodDelete,
	MethodCheck,
	MethodIPAuth,
}

func (m Method) String() string { return string(m) }

// ReadOnly reports whether calling the method leaves account state unchanged
func (m Method) ReadOnly() bool {
	switch m {
	case MethodGetPrice, MethodGetCount, MethodGetCountry, MethodGetProxy, MethodCheck:
		return true
	}
	return false
}

// requiredFields lists the payload keys a successful response must carry,
// beyond the status discriminator.
var requiredFields = map[Method][]string{
	MethodGetPrice:       {"price", "period", "count"},
	MethodGetCount:       {"count"},
	MethodGetCountry:     {"list"},
	MethodGetProxy:       {"list"},
	MethodSetType:        nil,
	MethodSetDescription: {"count"},
	MethodBuy:            {"count", "list"},
	MethodProlong:        {"list"},
	MethodDelete:         {"count"},
	MethodCheck:          {"proxy_status"},
	MethodIPAuth:         nil,
}
