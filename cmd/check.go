package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/proxies"
	"github.com/s0up4200/px6ctl/px6"
)

var proxyFlag string

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [ids...]",
	Short: "Check whether proxies are working",
	Long: `Check proxies on the account by id or filter, or a single proxy given as
ip:port:user:pass. Many proxies are checked concurrently.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&proxyFlag, "proxy", "", "proxy to check as ip:port:user:pass")
	checkCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")
	checkCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

// checkView is the structured output of one check
type checkView struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Address string `json:"address" yaml:"address"`
	Working bool   `json:"working" yaml:"working"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if proxyFlag != "" {
		if len(args) > 0 {
			return errors.New("--proxy cannot be combined with proxy ids")
		}
		proxy, err := px6.NewProxyString(proxyFlag)
		if err != nil {
			return err
		}
		working, err := proxyClient.Check(ctx, px6.CheckParams{Proxy: proxy})
		if err != nil {
			return err
		}
		view := checkView{Address: fmt.Sprintf("%s:%d", proxy.Addr(), proxy.Port()), Working: working}
		return render(cmd.OutOrStdout(), view, func() string {
			return fmt.Sprintf("%s %s\n", statusMark(working), view.Address)
		})
	}

	targets, err := selectProxies(ctx, args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No proxies to check.")
		return nil
	}

	var result proxies.BatchCheckResult
	if cfg.Output.Format == "table" {
		operations.SetOutput(cmd.OutOrStdout())
		result = operations.CheckProxies(ctx, targets)
	} else {
		result = proxyClient.BatchCheck(ctx, targets)
		views := make([]checkView, 0, len(result.Results))
		for _, res := range result.Results {
			view := checkView{ID: res.Proxy.ID, Address: res.Proxy.Address(), Working: res.Working}
			if res.Err != nil {
				view.Error = res.Err.Error()
			}
			views = append(views, view)
		}
		if err := render(cmd.OutOrStdout(), views, nil); err != nil {
			return err
		}
	}

	if err := result.Err(); err != nil {
		return fmt.Errorf("some checks failed: %w", err)
	}
	return nil
}

func statusMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
