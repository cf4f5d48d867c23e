package proxies

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/px6ctl/px6"
)

// mockAPI implements px6.API for testing
type mockAPI struct {
	mu sync.Mutex

	proxies   []px6.Proxy
	countries []string
	counts    map[string]int
	price     float64
	balance   float64
	working   map[string]bool

	// Errors returned before any successful answer, per method
	failures map[px6.Method][]error

	// Track calls for verification
	calls       map[px6.Method]int
	pages       []int
	// Report list_count as the page length instead of the account total
	pageCount   bool
	deletedIDs  []string
	prolongIDs  []string
	boughtCount int
}

func newMockAPI() *mockAPI {
	return &mockAPI{
		counts:   make(map[string]int),
		working:  make(map[string]bool),
		failures: make(map[px6.Method][]error),
		calls:    make(map[px6.Method]int),
	}
}

func (m *mockAPI) record(method px6.Method) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	if errs := m.failures[method]; len(errs) > 0 {
		m.failures[method] = errs[1:]
		return errs[0]
	}
	return nil
}

func (m *mockAPI) callCount(method px6.Method) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockAPI) account() px6.Account {
	return px6.Account{UserID: "1", Balance: px6.FlexFloat(m.balance), Currency: "RUB"}
}

func (m *mockAPI) TestConnection(ctx context.Context) error {
	return m.record(px6.MethodGetCountry)
}

func (m *mockAPI) GetPrice(ctx context.Context, params px6.GetPriceParams) (*px6.GetPriceResult, error) {
	if err := m.record(px6.MethodGetPrice); err != nil {
		return nil, err
	}
	return &px6.GetPriceResult{
		Account:     m.account(),
		Price:       px6.FlexFloat(m.price * float64(params.Count)),
		PriceSingle: px6.FlexFloat(m.price),
		Period:      px6.FlexInt(params.Period.Days()),
		Count:       px6.FlexInt(params.Count),
	}, nil
}

func (m *mockAPI) GetCount(ctx context.Context, params px6.GetCountParams) (*px6.GetCountResult, error) {
	if err := m.record(px6.MethodGetCount); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &px6.GetCountResult{Account: m.account(), Count: px6.FlexInt(m.counts[params.Country.String()])}, nil
}

func (m *mockAPI) GetCountry(ctx context.Context, params px6.GetCountryParams) (*px6.GetCountryResult, error) {
	if err := m.record(px6.MethodGetCountry); err != nil {
		return nil, err
	}
	return &px6.GetCountryResult{Account: m.account(), List: m.countries}, nil
}

func (m *mockAPI) GetProxy(ctx context.Context, params px6.GetProxyParams) (*px6.GetProxyResult, error) {
	if err := m.record(px6.MethodGetProxy); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.pages = append(m.pages, params.Page)
	m.mu.Unlock()

	limit := params.Limit.Int()
	start := min((params.Page-1)*limit, len(m.proxies))
	end := min(start+limit, len(m.proxies))
	count := len(m.proxies)
	if m.pageCount {
		count = end - start
	}
	return &px6.GetProxyResult{
		Account:   m.account(),
		ListCount: px6.FlexInt(count),
		List:      px6.ProxyList(m.proxies[start:end]),
	}, nil
}

func (m *mockAPI) Check(ctx context.Context, params px6.CheckParams) (*px6.CheckResult, error) {
	if err := m.record(px6.MethodCheck); err != nil {
		return nil, err
	}
	id := params.IDs.String()
	m.mu.Lock()
	working, ok := m.working[id]
	m.mu.Unlock()
	if !ok {
		return nil, &px6.DocumentedError{Code: 404, Message: "Error not found"}
	}
	return &px6.CheckResult{Account: m.account(), ProxyID: px6.FlexString(id), ProxyStatus: px6.FlexBool(working)}, nil
}

func (m *mockAPI) SetType(ctx context.Context, params px6.SetTypeParams) (*px6.SetTypeResult, error) {
	if err := m.record(px6.MethodSetType); err != nil {
		return nil, err
	}
	return &px6.SetTypeResult{Account: m.account()}, nil
}

func (m *mockAPI) SetDescription(ctx context.Context, params px6.SetDescriptionParams) (*px6.SetDescriptionResult, error) {
	if err := m.record(px6.MethodSetDescription); err != nil {
		return nil, err
	}
	return &px6.SetDescriptionResult{Account: m.account(), Count: px6.FlexInt(params.IDs.Len())}, nil
}

func (m *mockAPI) Buy(ctx context.Context, params px6.BuyParams) (*px6.BuyResult, error) {
	if err := m.record(px6.MethodBuy); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.boughtCount += params.Count
	m.mu.Unlock()
	return &px6.BuyResult{
		Account: m.account(),
		Count:   px6.FlexInt(params.Count),
		Price:   px6.FlexFloat(m.price * float64(params.Count)),
		Period:  px6.FlexInt(params.Period.Days()),
		Country: params.Country.String(),
	}, nil
}

func (m *mockAPI) Prolong(ctx context.Context, params px6.ProlongParams) (*px6.ProlongResult, error) {
	if err := m.record(px6.MethodProlong); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.prolongIDs = append(m.prolongIDs, params.IDs.Strings()...)
	m.mu.Unlock()
	return &px6.ProlongResult{
		Account: m.account(),
		Period:  px6.FlexInt(params.Period.Days()),
		Count:   px6.FlexInt(params.IDs.Len()),
	}, nil
}

func (m *mockAPI) Delete(ctx context.Context, params px6.DeleteParams) (*px6.DeleteResult, error) {
	if err := m.record(px6.MethodDelete); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.deletedIDs = append(m.deletedIDs, params.IDs.Strings()...)
	m.mu.Unlock()
	return &px6.DeleteResult{Account: m.account(), Count: px6.FlexInt(params.IDs.Len())}, nil
}

func (m *mockAPI) IPAuth(ctx context.Context, params px6.IPAuthParams) (*px6.IPAuthResult, error) {
	if err := m.record(px6.MethodIPAuth); err != nil {
		return nil, err
	}
	return &px6.IPAuthResult{Account: m.account()}, nil
}

var _ px6.API = (*mockAPI)(nil)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func makeProxies(n int) []px6.Proxy {
	out := make([]px6.Proxy, n)
	for i := range out {
		out[i] = px6.Proxy{
			ID:          px6.FlexString(fmt.Sprint(i + 1)),
			Host:        "10.0.0.1",
			Port:        px6.FlexInt(8000 + i),
			Version:     px6.ProxyVersionIPv4,
			Type:        px6.ProxyTypeHTTP,
			Country:     "ru",
			Active:      true,
			UnixtimeEnd: px6.Timestamp{Time: time.Unix(1_700_000_000+int64(i)*86400, 0)},
		}
	}
	return out
}

func TestClient_GetAllProxies_Paginates(t *testing.T) {
	api := newMockAPI()
	api.proxies = makeProxies(2500)
	client := NewClient(api, testLogger())

	proxies, account, err := client.GetAllProxies(context.Background(), 0, px6.Description{})
	require.NoError(t, err)

	assert.Len(t, proxies, 2500)
	assert.Equal(t, []int{1, 2, 3}, api.pages)
	assert.Equal(t, "RUB", account.Currency)
}

func TestClient_GetAllProxies_ExactPage(t *testing.T) {
	api := newMockAPI()
	api.proxies = makeProxies(1000)
	client := NewClient(api, testLogger())

	proxies, _, err := client.GetAllProxies(context.Background(), 0, px6.Description{})
	require.NoError(t, err)

	assert.Len(t, proxies, 1000)
	assert.Equal(t, []int{1, 2}, api.pages, "a full page is followed until a short one")
}

func TestClient_GetAllProxies_PageSizedListCount(t *testing.T) {
	api := newMockAPI()
	api.proxies = makeProxies(2300)
	api.pageCount = true
	client := NewClient(api, testLogger())

	proxies, _, err := client.GetAllProxies(context.Background(), px6.ProxyStateActive, px6.Description{})
	require.NoError(t, err)

	assert.Len(t, proxies, 2300)
	assert.Equal(t, []int{1, 2, 3}, api.pages)
}

func TestClient_GetAllProxies_TrustsAccountTotal(t *testing.T) {
	api := newMockAPI()
	api.proxies = makeProxies(2000)
	client := NewClient(api, testLogger())

	proxies, _, err := client.GetAllProxies(context.Background(), 0, px6.Description{})
	require.NoError(t, err)

	assert.Len(t, proxies, 2000)
	assert.Equal(t, []int{1, 2}, api.pages, "list_count above the page length ends paging")
}

func TestClient_RetriesReadOnlyOnRateLimit(t *testing.T) {
	api := newMockAPI()
	api.countries = []string{"ru"}
	api.failures[px6.MethodGetCountry] = []error{&px6.RateLimitedError{}, &px6.RateLimitedError{}}
	client := NewClient(api, testLogger(), WithRetryPolicy(fastRetry()))

	countries, err := client.GetCountries(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ru"}, countries)
	assert.Equal(t, 3, api.callCount(px6.MethodGetCountry))
}

func TestClient_RetryGivesUp(t *testing.T) {
	api := newMockAPI()
	api.failures[px6.MethodGetCountry] = []error{&px6.RateLimitedError{}, &px6.RateLimitedError{}, &px6.RateLimitedError{}, &px6.RateLimitedError{}}
	client := NewClient(api, testLogger(), WithRetryPolicy(fastRetry()))

	_, err := client.GetCountries(context.Background(), 0)
	assert.ErrorIs(t, err, px6.ErrRateLimited)
	assert.Equal(t, 3, api.callCount(px6.MethodGetCountry))
}

func TestClient_DoesNotRetryOtherFailures(t *testing.T) {
	api := newMockAPI()
	api.failures[px6.MethodGetCountry] = []error{&px6.DocumentedError{Code: 100, Message: "Error key"}}
	client := NewClient(api, testLogger(), WithRetryPolicy(fastRetry()))

	_, err := client.GetCountries(context.Background(), 0)
	var derr *px6.DocumentedError
	require.ErrorAs(t, err, &derr)
	assert.True(t, derr.IsAuth())
	assert.Equal(t, 1, api.callCount(px6.MethodGetCountry))
}

func TestClient_NeverRetriesBuy(t *testing.T) {
	api := newMockAPI()
	api.failures[px6.MethodBuy] = []error{&px6.RateLimitedError{}}
	client := NewClient(api, testLogger(), WithRetryPolicy(fastRetry()))

	_, err := client.Buy(context.Background(), px6.BuyParams{})
	assert.ErrorIs(t, err, px6.ErrRateLimited)
	assert.Equal(t, 1, api.callCount(px6.MethodBuy))
	assert.Zero(t, api.boughtCount)
}

func TestClient_RetryStopsOnCancel(t *testing.T) {
	api := newMockAPI()
	for range 10 {
		api.failures[px6.MethodGetCount] = append(api.failures[px6.MethodGetCount], &px6.RateLimitedError{})
	}
	policy := RetryPolicy{MaxAttempts: 10, InitialInterval: time.Hour, MaxInterval: time.Hour}
	client := NewClient(api, testLogger(), WithRetryPolicy(policy))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetCount(ctx, px6.GetCountParams{})
	require.Error(t, err)
	assert.Equal(t, 1, api.callCount(px6.MethodGetCount))
}

func TestGetProxyInfo(t *testing.T) {
	p := px6.Proxy{
		ID:          "11",
		IP:          "2a00:1838:32:19f:45fb:2640::330",
		Host:        "185.22.134.250",
		Port:        7330,
		User:        "5svBNZ",
		Pass:        "iagn2d",
		Type:        px6.ProxyTypeHTTP,
		Version:     px6.ProxyVersionIPv6,
		Country:     "ru",
		Date:        "2016-06-19 16:32:39",
		DateEnd:     "2016-07-12 11:50:41",
		Description: "team",
		Active:      true,
	}

	info := GetProxyInfo(p)
	assert.Equal(t, "11", info.ID)
	assert.Equal(t, "185.22.134.250:7330", info.Address())
	assert.Equal(t, "185.22.134.250:7330:5svBNZ:iagn2d", info.ProxyString())
	assert.Equal(t, time.Date(2016, 6, 19, 16, 32, 39, 0, time.UTC), info.Bought)
	assert.Equal(t, time.Date(2016, 7, 12, 11, 50, 41, 0, time.UTC), info.Expires)

	now := time.Date(2016, 7, 2, 11, 50, 41, 0, time.UTC)
	assert.Equal(t, 10, info.DaysLeft(now))
	assert.False(t, info.Expired(now))
	assert.True(t, info.Expired(info.Expires))
	assert.Equal(t, -1, info.DaysLeft(info.Expires.Add(25*time.Hour)))
}

func TestGetProxyInfo_PrefersUnixtime(t *testing.T) {
	end := time.Unix(1468349441, 0)
	info := GetProxyInfo(px6.Proxy{ID: "1", DateEnd: "not a date", UnixtimeEnd: px6.Timestamp{Time: end}})
	assert.True(t, info.Expires.Equal(end))
	assert.True(t, info.Bought.IsZero())
}

func TestClient_TestConnection(t *testing.T) {
	api := newMockAPI()
	api.failures[px6.MethodGetCountry] = []error{errors.New("dial tcp: refused")}
	client := NewClient(api, testLogger())

	err := client.TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to px6")
	assert.NoError(t, client.TestConnection(context.Background()))
}
