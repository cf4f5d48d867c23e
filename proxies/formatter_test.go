package proxies

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/s0up4200/px6ctl/px6"
)

func fixedFormatter(now time.Time) *ConsoleFormatter {
	return &ConsoleFormatter{now: func() time.Time { return now }}
}

func TestConsoleFormatter_FormatProxyList(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := fixedFormatter(now)

	proxies := []ProxyInfo{
		{
			ID: "1", Host: "10.0.0.1", Port: 8000, Version: px6.ProxyVersionIPv4, Type: px6.ProxyTypeHTTP,
			Country: "ru", Expires: now.Add(72 * time.Hour), User: "u", Pass: "p",
		},
		{
			ID: "2", Host: "10.0.0.2", Port: 8001, Country: "us", Description: "team",
			Expires: now.Add(-time.Hour),
		},
	}

	got := f.FormatProxyList(proxies, FormatOptions{ShowCredentials: true})

	for _, want := range []string{
		"Proxies (2):",
		"├── 10.0.0.1:8000 (1)",
		"│   ipv4 | http | RU",
		"│   Expires: 2024-05-04 (3 days left)",
		"│   Login: u:p",
		"╰── 10.0.0.2:8001 (2)",
		"    Expired: 2024-05-01",
		"    Description: team",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if got := f.FormatProxyList(nil, FormatOptions{}); got != "No proxies found" {
		t.Errorf("unexpected empty output %q", got)
	}
}

func TestConsoleFormatter_FormatProxiesToDelete(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := fixedFormatter(now)

	got := f.FormatProxiesToDelete([]ProxyInfo{
		{ID: "9", Host: "10.0.0.9", Port: 1080, Active: true, Expires: now.Add(24 * time.Hour)},
	})

	if !strings.Contains(got, "Proxy to be deleted (1):") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "Warning: 1 of these is still active") {
		t.Errorf("missing active warning:\n%s", got)
	}
}

func TestConsoleFormatter_FormatCheckResults(t *testing.T) {
	f := NewConsoleFormatter()
	got := f.FormatCheckResults(BatchCheckResult{
		Requested: 3,
		Results: []CheckResult{
			{Proxy: ProxyInfo{ID: "1", Host: "h", Port: 1}, Working: true},
			{Proxy: ProxyInfo{ID: "2", Host: "h", Port: 2}},
			{Proxy: ProxyInfo{ID: "3", Host: "h", Port: 3}, Err: errors.New("boom")},
		},
	})

	for _, want := range []string{
		"Checked 3 proxies, 1 working:",
		"├── h:1 (1) OK",
		"├── h:2 (2) NOT WORKING",
		"╰── h:3 (3) ERROR: boom",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestConsoleFormatter_QuoteWarning(t *testing.T) {
	f := NewConsoleFormatter()
	got := f.FormatOrder(BuyOptions{Count: 1}, &Quote{Price: 10, Balance: 1, Currency: "RUB"}, 5)
	if !strings.Contains(got, "balance is too low") {
		t.Errorf("expected balance warning:\n%s", got)
	}
}
