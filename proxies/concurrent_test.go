package proxies

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/px6ctl/px6"
)

func TestClient_BatchCheck(t *testing.T) {
	api := newMockAPI()
	api.working["1"] = true
	api.working["2"] = false
	client := NewClient(api, testLogger())

	proxies := []ProxyInfo{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	result := client.BatchCheck(context.Background(), proxies)

	assert.Equal(t, 3, result.Requested)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Working)
	assert.False(t, result.Results[1].Working)
	assert.NoError(t, result.Results[1].Err)
	assert.ErrorIs(t, result.Results[2].Err, px6.ErrDocumented)
	assert.Equal(t, 1, result.Working())

	err := result.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy 3")
}

func TestClient_BatchCheckEmpty(t *testing.T) {
	client := NewClient(newMockAPI(), testLogger())
	result := client.BatchCheck(context.Background(), nil)
	assert.Zero(t, result.Requested)
	assert.NoError(t, result.Err())
}

func TestClient_BatchDeleteChunks(t *testing.T) {
	api := newMockAPI()
	client := NewClient(api, testLogger())

	proxies := make([]ProxyInfo, 250)
	for i := range proxies {
		proxies[i] = ProxyInfo{ID: fmt.Sprint(i + 1)}
	}

	result := client.BatchDelete(context.Background(), proxies)
	assert.Equal(t, 250, result.Requested)
	assert.Equal(t, 250, result.Deleted)
	assert.Empty(t, result.Failed)
	assert.NoError(t, result.Err())
	assert.Equal(t, 3, api.callCount(px6.MethodDelete))
	assert.Len(t, api.deletedIDs, 250)
}

func TestClient_BatchDeleteCollectsFailures(t *testing.T) {
	api := newMockAPI()
	api.failures[px6.MethodDelete] = []error{&px6.DocumentedError{Code: 404}}
	client := NewClient(api, testLogger())

	proxies := make([]ProxyInfo, 150)
	for i := range proxies {
		proxies[i] = ProxyInfo{ID: fmt.Sprint(i + 1)}
	}

	result := client.BatchDelete(context.Background(), proxies)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, []int{50, 100}, result.Deleted)
	assert.ErrorIs(t, result.Err(), px6.ErrDocumented)
}

func TestClient_CountryAvailabilitySequential(t *testing.T) {
	api := newMockAPI()
	api.countries = []string{"us", "de", "ru"}
	api.counts = map[string]int{"us": 10, "de": 0, "ru": 3}
	client := NewClient(api, testLogger())

	counts, err := client.CountryAvailability(context.Background(), px6.ProxyVersionIPv4)
	require.NoError(t, err)
	assert.Equal(t, []CountryCount{
		{Country: "de", Available: 0},
		{Country: "ru", Available: 3},
		{Country: "us", Available: 10},
	}, counts)
}

func TestClient_CountryAvailabilityAsync(t *testing.T) {
	transport := px6.TransportFunc(func(ctx context.Context, req *px6.Request) (*px6.Response, error) {
		country, _ := req.Query.Get("country")
		return &px6.Response{StatusCode: 200, Body: []byte(fmt.Sprintf(`{"status":"yes","count":%d}`, len(country)*7))}, nil
	})
	px6Client, err := px6.NewClient("key", testLogger(), px6.WithTransport(transport))
	require.NoError(t, err)

	api := newMockAPI()
	api.countries = []string{"us", "xx1", "de"}
	client := NewClient(api, testLogger(), WithCountFetcher(px6Client.Async()))

	counts, err := client.CountryAvailability(context.Background(), 0)
	require.Error(t, err, "the malformed country code is reported")
	assert.Contains(t, err.Error(), `"xx1"`)

	countries := make([]string, 0, len(counts))
	for _, c := range counts {
		countries = append(countries, c.Country)
		assert.Equal(t, 14, c.Available)
	}
	assert.True(t, sort.StringsAreSorted(countries))
	assert.Equal(t, "de,us", strings.Join(countries, ","))
}

func TestClient_CountryAvailabilityBoundsInFlight(t *testing.T) {
	var inFlight, peak, calls atomic.Int32
	transport := px6.TransportFunc(func(ctx context.Context, req *px6.Request) (*px6.Response, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &px6.Response{StatusCode: 200, Body: []byte(`{"status":"yes","count":1}`)}, nil
	})
	px6Client, err := px6.NewClient("key", testLogger(), px6.WithTransport(transport))
	require.NoError(t, err)

	api := newMockAPI()
	for i := 0; i < 50; i++ {
		api.countries = append(api.countries, string([]byte{'a' + byte(i/26), 'a' + byte(i%26)}))
	}
	client := NewClient(api, testLogger(), WithCountFetcher(px6Client.Async()))

	counts, err := client.CountryAvailability(context.Background(), px6.ProxyVersionIPv4)
	require.NoError(t, err)
	assert.Len(t, counts, 50)
	assert.Equal(t, int32(50), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(DefaultConcurrency))
	assert.Positive(t, peak.Load())
}
