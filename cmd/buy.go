package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/proxies"
	"github.com/s0up4200/px6ctl/px6"
)

var (
	countFlag   int
	periodFlag  int
	countryFlag string
	versionFlag string
	typeFlag    string
	autoProlong bool
)

// buyCmd represents the buy command
var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy new proxies",
	Long: `Buy proxies in one country. Availability and price are checked first and
the order is shown for confirmation unless --yes is given.`,
	RunE: runBuy,
}

func init() {
	rootCmd.AddCommand(buyCmd)

	buyCmd.Flags().IntVarP(&countFlag, "count", "n", 1, "number of proxies to buy")
	buyCmd.Flags().IntVar(&periodFlag, "period", 30, "rental period in days")
	buyCmd.Flags().StringVar(&countryFlag, "country", "", "two letter country code")
	buyCmd.Flags().StringVar(&versionFlag, "version", "", "proxy version: ipv4, ipv4-shared or ipv6")
	buyCmd.Flags().StringVar(&typeFlag, "type", "", "proxy protocol: http or socks")
	buyCmd.Flags().StringVar(&descrFlag, "descr", "", "description for the new proxies")
	buyCmd.Flags().BoolVar(&autoProlong, "auto-prolong", false, "prolong the proxies automatically")
	buyCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
	_ = buyCmd.MarkFlagRequired("country")
}

// orderView is the structured output of a completed order
type orderView struct {
	Count    int                 `json:"count" yaml:"count"`
	Period   int                 `json:"period" yaml:"period"`
	Country  string              `json:"country" yaml:"country"`
	Price    float64             `json:"price" yaml:"price"`
	Currency string              `json:"currency" yaml:"currency"`
	Balance  float64             `json:"balance" yaml:"balance"`
	Proxies  []proxies.ProxyInfo `json:"proxies" yaml:"proxies"`
}

func runBuy(cmd *cobra.Command, args []string) error {
	opts, err := buyOptions()
	if err != nil {
		return err
	}

	confirm, err := confirmEnabled()
	if err != nil {
		return err
	}
	opts.DryRun = cfg.Safety.DryRun
	opts.Confirm = confirm

	logger.Info().
		Int("count", opts.Count).
		Str("country", opts.Country.String()).
		Int("period", opts.Period.Days()).
		Msg("Placing order")

	operations.SetOutput(cmd.OutOrStdout())
	result, err := operations.BuyProxies(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, proxies.ErrNotEnoughProxies) {
			return err
		}
		return fmt.Errorf("failed to buy proxies: %w", err)
	}
	if result == nil {
		return nil
	}

	view := orderView{
		Count:    result.Count.Int(),
		Period:   result.Period.Int(),
		Country:  result.Country,
		Price:    result.Price.Float(),
		Currency: result.Currency,
		Balance:  result.Balance.Float(),
		Proxies:  make([]proxies.ProxyInfo, 0, len(result.List)),
	}
	for _, p := range result.List {
		view.Proxies = append(view.Proxies, proxies.GetProxyInfo(p))
	}

	return render(cmd.OutOrStdout(), view, func() string {
		var sb strings.Builder
		fmt.Fprintf(&sb, "✓ Bought %d proxies for %.2f %s (balance: %.2f %s)\n\n",
			view.Count, view.Price, view.Currency, view.Balance, view.Currency)
		sb.WriteString(proxies.NewConsoleFormatter().FormatProxyList(view.Proxies, proxies.FormatOptions{
			ShowDetails:     true,
			ShowCredentials: true,
		}))
		return sb.String()
	})
}

// buyOptions validates the order flags
func buyOptions() (proxies.BuyOptions, error) {
	opts := proxies.BuyOptions{
		Count:       countFlag,
		AutoProlong: autoProlong,
	}
	if countFlag < 1 {
		return opts, fmt.Errorf("--count must be at least 1")
	}

	var err error
	if opts.Period, err = px6.NewPeriod(periodFlag); err != nil {
		return opts, err
	}
	if opts.Country, err = px6.NewCountry(countryFlag); err != nil {
		return opts, err
	}
	if opts.Version, err = parseVersion(versionFlag); err != nil {
		return opts, err
	}
	if opts.Type, err = parseType(typeFlag); err != nil {
		return opts, err
	}
	if descrFlag != "" {
		if opts.Description, err = px6.NewDescription(descrFlag); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// parseVersion parses an optional --version flag
func parseVersion(s string) (px6.ProxyVersion, error) {
	if s == "" {
		return 0, nil
	}
	return px6.ParseProxyVersion(s)
}

// parseType parses an optional --type flag
func parseType(s string) (px6.ProxyType, error) {
	if s == "" {
		return 0, nil
	}
	return px6.ParseProxyType(s)
}
