package px6

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsQueryEncoding(t *testing.T) {
	ids := mustIDs(t, "id1", "id2")
	limit, err := NewPageLimit(10)
	require.NoError(t, err)
	proxy, err := NewProxyString("127.0.0.1:8080:user:pass")
	require.NoError(t, err)
	ips, err := NewIPAuth("127.0.0.1", "127.0.0.2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "getprice full",
			params: GetPriceParams{Count: 10, Period: mustPeriod(t, 30), Version: ProxyVersionIPv6},
			want:   "count=10&period=30&version=6",
		},
		{
			name:   "getprice minimal",
			params: GetPriceParams{Count: 10, Period: mustPeriod(t, 30)},
			want:   "count=10&period=30",
		},
		{
			name:   "getcount minimal",
			params: GetCountParams{Country: mustCountry(t, "uk")},
			want:   "country=uk",
		},
		{
			name:   "getcount with shared version",
			params: GetCountParams{Country: mustCountry(t, "uk"), Version: ProxyVersionIPv4Shared},
			want:   "country=uk&version=3",
		},
		{
			name:   "getcountry full",
			params: GetCountryParams{Version: ProxyVersionIPv6},
			want:   "version=6",
		},
		{
			name:   "getcountry minimal",
			params: GetCountryParams{},
			want:   "",
		},
		{
			name: "getproxy full",
			params: GetProxyParams{
				State:       ProxyStateActive,
				Description: mustDescription(t, "test_description"),
				Page:        3,
				Limit:       limit,
			},
			want: "state=active&descr=test_description&page=3&limit=10&nokey",
		},
		{
			name:   "getproxy minimal",
			params: GetProxyParams{},
			want:   "nokey",
		},
		{
			name:   "settype",
			params: SetTypeParams{IDs: ids, Type: ProxyTypeSOCKS},
			want:   "ids=id1,id2&type=socks",
		},
		{
			name: "setdescr full",
			params: SetDescriptionParams{
				New: mustDescription(t, "new_proxy_description"),
				Old: mustDescription(t, "old_proxy_description"),
				IDs: ids,
			},
			want: "new=new_proxy_description&old=old_proxy_description&ids=id1,id2",
		},
		{
			name: "buy full",
			params: BuyParams{
				Count:       100,
				Period:      mustPeriod(t, 30),
				Country:     mustCountry(t, "us"),
				Version:     ProxyVersionIPv6,
				Type:        ProxyTypeHTTP,
				Description: mustDescription(t, "new_proxy_description"),
				AutoProlong: true,
			},
			want: "count=100&period=30&country=us&version=6&type=http&descr=new_proxy_description&auto_prolong&nokey",
		},
		{
			name:   "buy minimal",
			params: BuyParams{Count: 100, Period: mustPeriod(t, 30), Country: mustCountry(t, "us")},
			want:   "count=100&period=30&country=us&nokey",
		},
		{
			name:   "prolong",
			params: ProlongParams{Period: mustPeriod(t, 30), IDs: ids},
			want:   "period=30&ids=id1,id2&nokey",
		},
		{
			name:   "delete full",
			params: DeleteParams{IDs: ids, Description: mustDescription(t, "new_proxy_description")},
			want:   "ids=id1,id2&descr=new_proxy_description",
		},
		{
			name:   "check full",
			params: CheckParams{IDs: ids, Proxy: proxy},
			want:   "ids=id1,id2&proxy=127.0.0.1:8080:user:pass",
		},
		{
			name:   "ipauth remove",
			params: IPAuthParams{Target: RemoveIPAuth()},
			want:   "ip=delete",
		},
		{
			name:   "ipauth list",
			params: IPAuthParams{Target: ips},
			want:   "ip=127.0.0.1,127.0.0.2",
		},
		{
			name:   "description with space is escaped",
			params: DeleteParams{Description: mustDescription(t, "team a")},
			want:   "descr=team%20a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.params.Query()
			assert.Equal(t, tt.want, q.Encode())
			assert.Equal(t, q.Encode(), tt.params.Query().Encode(), "encoding must be deterministic")
		})
	}
}

func TestParamsValidate(t *testing.T) {
	ids := mustIDs(t, "1")

	tests := []struct {
		name      string
		params    Params
		wantField string
	}{
		{name: "getprice missing everything", params: GetPriceParams{}, wantField: "count"},
		{name: "getprice negative count", params: GetPriceParams{Count: -1, Period: mustPeriod(t, 30)}, wantField: "count"},
		{name: "getprice missing period", params: GetPriceParams{Count: 1}, wantField: "period"},
		{name: "getprice bad version", params: GetPriceParams{Count: 1, Period: mustPeriod(t, 30), Version: 42}, wantField: "version"},
		{name: "getcount missing country", params: GetCountParams{}, wantField: "country"},
		{name: "getcountry bad version", params: GetCountryParams{Version: -3}, wantField: "version"},
		{name: "getproxy negative page", params: GetProxyParams{Page: -1}, wantField: "page"},
		{name: "getproxy bad state", params: GetProxyParams{State: 99}, wantField: "state"},
		{name: "settype missing type", params: SetTypeParams{IDs: ids}, wantField: "type"},
		{name: "settype missing ids", params: SetTypeParams{Type: ProxyTypeHTTP}, wantField: "ids"},
		{name: "settype bad type", params: SetTypeParams{IDs: ids, Type: 7}, wantField: "type"},
		{name: "setdescr missing new", params: SetDescriptionParams{IDs: ids}, wantField: "new"},
		{name: "setdescr missing selector", params: SetDescriptionParams{New: mustDescription(t, "x")}, wantField: "old|ids"},
		{name: "buy missing country", params: BuyParams{Count: 1, Period: mustPeriod(t, 30)}, wantField: "country"},
		{name: "buy bad type", params: BuyParams{Count: 1, Period: mustPeriod(t, 30), Country: mustCountry(t, "us"), Type: 5}, wantField: "type"},
		{name: "prolong missing ids", params: ProlongParams{Period: mustPeriod(t, 7)}, wantField: "ids"},
		{name: "prolong missing period", params: ProlongParams{IDs: ids}, wantField: "period"},
		{name: "delete needs a selector", params: DeleteParams{}, wantField: "ids|descr"},
		{name: "check needs a selector", params: CheckParams{}, wantField: "ids|proxy"},
		{name: "ipauth needs a target", params: IPAuthParams{}, wantField: "ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			verr, ok := AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}

	valid := []Params{
		GetPriceParams{Count: 1, Period: mustPeriod(t, 30)},
		GetCountParams{Country: mustCountry(t, "ru")},
		GetCountryParams{},
		GetProxyParams{},
		SetTypeParams{IDs: ids, Type: ProxyTypeSOCKS},
		SetDescriptionParams{New: mustDescription(t, "x"), Old: mustDescription(t, "y")},
		BuyParams{Count: 1, Period: mustPeriod(t, 30), Country: mustCountry(t, "us")},
		ProlongParams{Period: mustPeriod(t, 30), IDs: ids},
		DeleteParams{IDs: ids},
		CheckParams{IDs: ids},
		IPAuthParams{Target: RemoveIPAuth()},
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), "%T", p)
	}
}

func TestRequestMappingHoldsOnlyRequiredKeys(t *testing.T) {
	ids := mustIDs(t, "1")

	tests := []struct {
		method Method
		params Params
		want   []string
	}{
		{MethodGetPrice, GetPriceParams{Count: 1, Period: mustPeriod(t, 30)}, []string{"count", "period"}},
		{MethodGetCount, GetCountParams{Country: mustCountry(t, "us")}, []string{"country"}},
		{MethodGetCountry, GetCountryParams{}, nil},
		{MethodGetProxy, GetProxyParams{}, []string{"nokey"}},
		{MethodSetType, SetTypeParams{IDs: ids, Type: ProxyTypeHTTP}, []string{"ids", "type"}},
		{MethodSetDescription, SetDescriptionParams{New: mustDescription(t, "n"), IDs: ids}, []string{"new", "ids"}},
		{MethodBuy, BuyParams{Count: 1, Period: mustPeriod(t, 30), Country: mustCountry(t, "us")}, []string{"count", "period", "country", "nokey"}},
		{MethodProlong, ProlongParams{Period: mustPeriod(t, 30), IDs: ids}, []string{"period", "ids", "nokey"}},
		{MethodDelete, DeleteParams{IDs: ids}, []string{"ids"}},
		{MethodCheck, CheckParams{IDs: ids}, []string{"ids"}},
		{MethodIPAuth, IPAuthParams{Target: RemoveIPAuth()}, []string{"ip"}},
	}

	client, err := NewClient("key", nopLogger())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			req, err := client.prepare(tt.method, tt.params)
			require.NoError(t, err)

			want := append([]string{KeyAPIKey, KeyMethod}, tt.want...)
			mapping := req.Mapping()
			assert.Equal(t, want, mapping.Keys())
			for _, p := range mapping {
				if !p.Flag {
					assert.NotEmpty(t, p.Value, "key %s", p.Key)
				}
			}

			again, err := client.prepare(tt.method, tt.params)
			require.NoError(t, err)
			assert.Equal(t, mapping, again.Mapping())
			assert.Equal(t, req.URL(), again.URL())
		})
	}
}

func TestRequestURL(t *testing.T) {
	req := &Request{
		BaseURL: "https://px6.link/",
		APIKey:  "secret-key",
		Method:  MethodGetCount,
		Query:   GetCountParams{Country: mustCountry(t, "us")}.Query(),
	}
	assert.Equal(t, "https://px6.link/api/secret-key/getcount?country=us", req.URL())
	assert.Equal(t, "https://px6.link/api/se******ey/getcount?country=us", req.RedactedURL())

	bare := &Request{BaseURL: "https://px6.link", APIKey: "k", Method: MethodGetCountry}
	assert.Equal(t, "https://px6.link/api/k/getcountry", bare.URL())
	assert.NotContains(t, bare.RedactedURL(), "/k/")
}

func TestQueryAccessors(t *testing.T) {
	q := BuyParams{Count: 2, Period: mustPeriod(t, 7), Country: mustCountry(t, "de"), AutoProlong: true}.Query()

	v, ok := q.Get("country")
	assert.True(t, ok)
	assert.Equal(t, "de", v)
	assert.True(t, q.Has("auto_prolong"))
	assert.True(t, q.Has("nokey"))
	assert.False(t, q.Has("descr"))
}
