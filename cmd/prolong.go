package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/proxies"
	"github.com/s0up4200/px6ctl/px6"
)

// prolongCmd represents the prolong command
var prolongCmd = &cobra.Command{
	Use:   "prolong [ids...]",
	Short: "Extend existing proxies",
	Long: `Prolong proxies selected by id or by a filter expression. The price is
quoted and confirmation requested unless --yes is given.`,
	RunE: runProlong,
}

func init() {
	rootCmd.AddCommand(prolongCmd)

	prolongCmd.Flags().IntVar(&periodFlag, "period", 30, "days to extend by")
	prolongCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")
	prolongCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	prolongCmd.Flags().StringVar(&descrFlag, "descr", "", "only proxies with this description")
	prolongCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
}

// prolongedView is one proxy of a completed prolongation
type prolongedView struct {
	ID      string    `json:"id" yaml:"id"`
	Expires time.Time `json:"expires" yaml:"expires"`
}

// prolongView is the structured output of a completed prolongation
type prolongView struct {
	Count    int             `json:"count" yaml:"count"`
	Period   int             `json:"period" yaml:"period"`
	Price    float64         `json:"price" yaml:"price"`
	Currency string          `json:"currency" yaml:"currency"`
	Balance  float64         `json:"balance" yaml:"balance"`
	Proxies  []prolongedView `json:"proxies" yaml:"proxies"`
}

func runProlong(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && filterExpr == "" && preset == "" && descrFlag == "" {
		return errors.New("select proxies to prolong by id, --descr or --filter")
	}

	period, err := px6.NewPeriod(periodFlag)
	if err != nil {
		return err
	}

	targets, err := selectProxies(cmd.Context(), args)
	if err != nil {
		return err
	}

	confirm, err := confirmEnabled()
	if err != nil {
		return err
	}

	operations.SetOutput(cmd.OutOrStdout())
	result, err := operations.ProlongProxies(cmd.Context(), targets, proxies.ProlongOptions{
		Period:  period,
		DryRun:  cfg.Safety.DryRun,
		Confirm: confirm,
	})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	view := prolongView{
		Count:    result.Count.Int(),
		Period:   result.Period.Int(),
		Price:    result.Price.Float(),
		Currency: result.Currency,
		Balance:  result.Balance.Float(),
		Proxies:  make([]prolongedView, 0, len(result.List)),
	}
	for _, p := range result.List {
		view.Proxies = append(view.Proxies, prolongedView{ID: string(p.ID), Expires: p.UnixtimeEnd.Time})
	}

	return render(cmd.OutOrStdout(), view, func() string {
		var sb strings.Builder
		fmt.Fprintf(&sb, "✓ Prolonged %d proxies by %d days for %.2f %s (balance: %.2f %s)\n",
			view.Count, view.Period, view.Price, view.Currency, view.Balance, view.Currency)
		for _, p := range view.Proxies {
			fmt.Fprintf(&sb, "  • #%s until %s\n", p.ID, p.Expires.Format("2006-01-02"))
		}
		return sb.String()
	})
}
