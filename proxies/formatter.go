package proxies

import (
	"fmt"
	"strings"
	"time"

	"github.com/s0up4200/px6ctl/px6"
)

// ConsoleFormatter provides console output formatting for proxies
type ConsoleFormatter struct {
	now func() time.Time
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{now: time.Now}
}

// branch returns the tree prefix and the indent for the lines under it
func branch(isLast bool) (string, string) {
	if isLast {
		return "╰── ", "    "
	}
	return "├── ", "│   "
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatProxyList formats a list of proxies for console display
func (f *ConsoleFormatter) FormatProxyList(proxies []ProxyInfo, options FormatOptions) string {
	if len(proxies) == 0 {
		return "No proxies found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(proxies), "Proxy", "Proxies"), len(proxies))

	now := f.now()
	for i, proxy := range proxies {
		isLast := i == len(proxies)-1
		f.formatProxy(&sb, proxy, isLast, now, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatProxiesToDelete formats proxies for deletion confirmation
func (f *ConsoleFormatter) FormatProxiesToDelete(proxies []ProxyInfo) string {
	if len(proxies) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s to be deleted (%d):\n\n", plural(len(proxies), "Proxy", "Proxies"), len(proxies))

	now := f.now()
	var activeCount int
	for i, proxy := range proxies {
		isLast := i == len(proxies)-1
		prefix, indent := branch(isLast)

		fmt.Fprintf(&sb, "%s%s (%s)\n", prefix, proxy.Address(), proxy.ID)
		f.writeExpiry(&sb, indent, proxy, now)
		if proxy.Description != "" {
			fmt.Fprintf(&sb, "%sDescription: %s\n", indent, proxy.Description)
		}
		if proxy.Active && !proxy.Expired(now) {
			activeCount++
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	if activeCount > 0 {
		fmt.Fprintf(&sb, "\nWarning: %d of these %s still active\n", activeCount, plural(activeCount, "is", "are"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatProxiesToProlong formats proxies for prolongation confirmation
func (f *ConsoleFormatter) FormatProxiesToProlong(proxies []ProxyInfo, period px6.Period, quote *Quote) string {
	if len(proxies) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s to be prolonged by %d days (%d):\n\n", plural(len(proxies), "Proxy", "Proxies"), period.Days(), len(proxies))

	now := f.now()
	for i, proxy := range proxies {
		isLast := i == len(proxies)-1
		prefix, indent := branch(isLast)

		fmt.Fprintf(&sb, "%s%s (%s)\n", prefix, proxy.Address(), proxy.ID)
		f.writeExpiry(&sb, indent, proxy, now)
		if !proxy.Expires.IsZero() {
			newEnd := proxy.Expires.AddDate(0, 0, period.Days())
			fmt.Fprintf(&sb, "%sNew expiry: %s\n", indent, newEnd.Format("2006-01-02"))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	writeQuote(&sb, quote)
	sb.WriteString("\n")
	return sb.String()
}

// FormatOrder formats an order summary
func (f *ConsoleFormatter) FormatOrder(order BuyOptions, quote *Quote, available int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\nOrder:\n\n")
	fmt.Fprintf(&sb, "├── Count: %d (%d available)\n", order.Count, available)
	fmt.Fprintf(&sb, "├── Country: %s\n", order.Country)
	fmt.Fprintf(&sb, "├── Period: %d days\n", order.Period.Days())
	if order.Version != 0 {
		fmt.Fprintf(&sb, "├── Version: %s\n", order.Version.Name())
	}
	if order.Type != 0 {
		fmt.Fprintf(&sb, "├── Type: %s\n", order.Type)
	}
	if !order.Description.IsZero() {
		fmt.Fprintf(&sb, "├── Description: %s\n", order.Description)
	}
	fmt.Fprintf(&sb, "╰── Auto prolong: %t\n", order.AutoProlong)

	writeQuote(&sb, quote)
	sb.WriteString("\n")
	return sb.String()
}

// FormatCheckResults formats the outcome of a batch check
func (f *ConsoleFormatter) FormatCheckResults(result BatchCheckResult) string {
	if result.Requested == 0 {
		return "No proxies to check"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nChecked %d %s, %d working:\n\n", result.Requested, plural(result.Requested, "proxy", "proxies"), result.Working())

	for i, res := range result.Results {
		isLast := i == len(result.Results)-1
		prefix, _ := branch(isLast)

		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR: " + res.Err.Error()
		case !res.Working:
			status = "NOT WORKING"
		}
		fmt.Fprintf(&sb, "%s%s (%s) %s\n", prefix, res.Proxy.Address(), res.Proxy.ID, status)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatCountries formats per-country availability
func (f *ConsoleFormatter) FormatCountries(counts []CountryCount) string {
	if len(counts) == 0 {
		return "No countries available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", plural(len(counts), "Country", "Countries"), len(counts))
	for i, c := range counts {
		prefix, _ := branch(i == len(counts)-1)
		fmt.Fprintf(&sb, "%s%s: %d available\n", prefix, c.Country, c.Available)
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatProxy formats a single proxy entry
func (f *ConsoleFormatter) formatProxy(sb *strings.Builder, proxy ProxyInfo, isLast bool, now time.Time, options FormatOptions) {
	prefix, indent := branch(isLast)

	fmt.Fprintf(sb, "%s%s (%s)\n", prefix, proxy.Address(), proxy.ID)

	var parts []string
	if proxy.Version != 0 {
		parts = append(parts, proxy.Version.Name())
	}
	if proxy.Type != 0 {
		parts = append(parts, proxy.Type.String())
	}
	if proxy.Country != "" {
		parts = append(parts, strings.ToUpper(proxy.Country))
	}
	if len(parts) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))
	}

	f.writeExpiry(sb, indent, proxy, now)

	if proxy.Description != "" {
		fmt.Fprintf(sb, "%sDescription: %s\n", indent, proxy.Description)
	}

	if options.ShowDetails {
		if proxy.IP != "" && proxy.IP != proxy.Host {
			fmt.Fprintf(sb, "%sIP: %s\n", indent, proxy.IP)
		}
		if !proxy.Bought.IsZero() {
			fmt.Fprintf(sb, "%sBought: %s\n", indent, proxy.Bought.Format("2006-01-02"))
		}
	}

	if options.ShowCredentials {
		fmt.Fprintf(sb, "%sLogin: %s:%s\n", indent, proxy.User, proxy.Pass)
	}
}

func (f *ConsoleFormatter) writeExpiry(sb *strings.Builder, indent string, proxy ProxyInfo, now time.Time) {
	if proxy.Expires.IsZero() {
		return
	}
	if proxy.Expired(now) {
		fmt.Fprintf(sb, "%sExpired: %s\n", indent, proxy.Expires.Format("2006-01-02"))
		return
	}
	days := proxy.DaysLeft(now)
	fmt.Fprintf(sb, "%sExpires: %s (%d %s left)\n", indent, proxy.Expires.Format("2006-01-02"), days, plural(days, "day", "days"))
}

func writeQuote(sb *strings.Builder, quote *Quote) {
	if quote == nil {
		return
	}
	fmt.Fprintf(sb, "\nPrice: %.2f %s (balance: %.2f %s)\n", quote.Price, quote.Currency, quote.Balance, quote.Currency)
	if !quote.Affordable() {
		sb.WriteString("Warning: balance is too low for this order\n")
	}
}
