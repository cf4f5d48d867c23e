package px6

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	responses := []*Response{
		{StatusCode: http.StatusOK, Body: []byte(`{"status":"yes","list":[]}`)},
		{StatusCode: http.StatusTooManyRequests},
		{StatusCode: http.StatusOK, Body: []byte(`{"status":"no","error_id":100,"error":"Error key"}`)},
	}
	next := 0
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		resp := responses[next]
		next++
		return resp, nil
	})

	client, err := NewClient("key", nopLogger(), WithTransport(transport), WithMetrics(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	for range responses {
		_, _ = client.GetCountry(ctx, GetCountryParams{})
	}
	_, _ = client.GetCount(ctx, GetCountParams{})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("getcountry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("getcountry", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("getcountry", "documented")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("getcount", "validation")))
	assert.Equal(t, 4, testutil.CollectAndCount(metrics.Requests))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Duration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(MethodGetCountry, nil, 0)
	})
}
