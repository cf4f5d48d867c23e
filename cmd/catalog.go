package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/proxies"
	"github.com/s0up4200/px6ctl/px6"
)

var withCounts bool

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Quote the price of an order",
	RunE:  runPrice,
}

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many proxies are available in a country",
	RunE:  runCount,
}

// countriesCmd represents the countries command
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries proxies can be bought in",
	Long: `List the countries proxies of a version can be bought in. With
--with-counts the availability of every country is looked up concurrently.`,
	RunE: runCountries,
}

func init() {
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(countriesCmd)

	priceCmd.Flags().IntVarP(&countFlag, "count", "n", 1, "number of proxies")
	priceCmd.Flags().IntVar(&periodFlag, "period", 30, "rental period in days")
	priceCmd.Flags().StringVar(&versionFlag, "version", "", "proxy version: ipv4, ipv4-shared or ipv6")

	countCmd.Flags().StringVar(&countryFlag, "country", "", "two letter country code")
	countCmd.Flags().StringVar(&versionFlag, "version", "", "proxy version: ipv4, ipv4-shared or ipv6")
	_ = countCmd.MarkFlagRequired("country")

	countriesCmd.Flags().StringVar(&versionFlag, "version", "", "proxy version: ipv4, ipv4-shared or ipv6")
	countriesCmd.Flags().BoolVar(&withCounts, "with-counts", false, "also show how many proxies each country has")
}

// priceView is the structured output of a price quote
type priceView struct {
	Count       int     `json:"count" yaml:"count"`
	Period      int     `json:"period" yaml:"period"`
	Version     string  `json:"version,omitempty" yaml:"version,omitempty"`
	Price       float64 `json:"price" yaml:"price"`
	PriceSingle float64 `json:"price_single" yaml:"price_single"`
	Currency    string  `json:"currency" yaml:"currency"`
	Balance     float64 `json:"balance" yaml:"balance"`
}

// countView is the structured output of an availability lookup
type countView struct {
	Country   string `json:"country" yaml:"country"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Available int    `json:"available" yaml:"available"`
}

func runPrice(cmd *cobra.Command, args []string) error {
	period, err := px6.NewPeriod(periodFlag)
	if err != nil {
		return err
	}
	ver, err := parseVersion(versionFlag)
	if err != nil {
		return err
	}

	res, err := proxyClient.GetPrice(cmd.Context(), px6.GetPriceParams{Count: countFlag, Period: period, Version: ver})
	if err != nil {
		return err
	}

	view := priceView{
		Count:       countFlag,
		Period:      period.Days(),
		Version:     ver.Name(),
		Price:       res.Price.Float(),
		PriceSingle: res.PriceSingle.Float(),
		Currency:    res.Currency,
		Balance:     res.Balance.Float(),
	}
	return render(cmd.OutOrStdout(), view, func() string {
		quote := &proxies.Quote{Price: view.Price, Currency: view.Currency, Balance: view.Balance}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d proxies for %d days: %.2f %s (%.2f %s each)\n",
			view.Count, view.Period, view.Price, view.Currency, view.PriceSingle, view.Currency)
		fmt.Fprintf(&sb, "Balance: %.2f %s\n", view.Balance, view.Currency)
		if !quote.Affordable() {
			sb.WriteString("⚠️  Balance does not cover this order\n")
		}
		return sb.String()
	})
}

func runCount(cmd *cobra.Command, args []string) error {
	country, err := px6.NewCountry(countryFlag)
	if err != nil {
		return err
	}
	ver, err := parseVersion(versionFlag)
	if err != nil {
		return err
	}

	available, err := proxyClient.GetCount(cmd.Context(), px6.GetCountParams{Country: country, Version: ver})
	if err != nil {
		return err
	}

	view := countView{Country: country.String(), Version: ver.Name(), Available: available}
	return render(cmd.OutOrStdout(), view, func() string {
		return fmt.Sprintf("%s: %d available\n", strings.ToUpper(view.Country), view.Available)
	})
}

func runCountries(cmd *cobra.Command, args []string) error {
	ver, err := parseVersion(versionFlag)
	if err != nil {
		return err
	}

	if withCounts {
		counts, err := proxyClient.CountryAvailability(cmd.Context(), ver)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), counts, func() string {
			return proxies.NewConsoleFormatter().FormatCountries(counts)
		})
	}

	countries, err := proxyClient.GetCountries(cmd.Context(), ver)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), countries, func() string {
		if len(countries) == 0 {
			return "No countries available.\n"
		}
		return strings.ToUpper(strings.Join(countries, " ")) + "\n"
	})
}
