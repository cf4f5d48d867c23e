package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/px6"
)

var (
	newDescrFlag string
	oldDescrFlag string
	removeIPAuth bool
)

// setTypeCmd represents the set-type command
var setTypeCmd = &cobra.Command{
	Use:   "set-type --type http|socks ids...",
	Short: "Switch the protocol of proxies",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSetType,
}

// setDescrCmd represents the set-descr command
var setDescrCmd = &cobra.Command{
	Use:   "set-descr --new text (--old text | ids...)",
	Short: "Change the description of proxies",
	Long: `Replace the description of proxies selected either by their current
description (--old) or by id.`,
	RunE: runSetDescr,
}

// ipAuthCmd represents the ip-auth command
var ipAuthCmd = &cobra.Command{
	Use:   "ip-auth (ips... | --remove)",
	Short: "Bind addresses for login-free proxy access",
	Long: `Authorize the given IPv4 addresses to use every proxy on the account
without credentials, or remove all bound addresses with --remove.`,
	RunE: runIPAuth,
}

func init() {
	rootCmd.AddCommand(setTypeCmd)
	rootCmd.AddCommand(setDescrCmd)
	rootCmd.AddCommand(ipAuthCmd)

	setTypeCmd.Flags().StringVar(&typeFlag, "type", "", "proxy protocol: http or socks")
	_ = setTypeCmd.MarkFlagRequired("type")

	setDescrCmd.Flags().StringVar(&newDescrFlag, "new", "", "new description")
	setDescrCmd.Flags().StringVar(&oldDescrFlag, "old", "", "current description of the proxies to change")
	_ = setDescrCmd.MarkFlagRequired("new")

	ipAuthCmd.Flags().BoolVar(&removeIPAuth, "remove", false, "remove all authorized addresses")
}

func runSetType(cmd *cobra.Command, args []string) error {
	proxyType, err := parseType(typeFlag)
	if err != nil {
		return err
	}
	ids, err := px6.ParseProxyIDs(strings.Join(args, ","))
	if err != nil {
		return err
	}

	if cfg.Safety.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "DRY RUN: would switch %d proxies to %s\n", ids.Len(), proxyType)
		return nil
	}

	if err := proxyClient.SetType(cmd.Context(), ids, proxyType); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Switched %d proxies to %s\n", ids.Len(), proxyType)
	return nil
}

func runSetDescr(cmd *cobra.Command, args []string) error {
	if (oldDescrFlag == "") == (len(args) == 0) {
		return errors.New("select proxies by exactly one of --old or ids")
	}

	var (
		params px6.SetDescriptionParams
		err    error
	)
	if params.New, err = px6.NewDescription(newDescrFlag); err != nil {
		return err
	}
	if oldDescrFlag != "" {
		if params.Old, err = px6.NewDescription(oldDescrFlag); err != nil {
			return err
		}
	} else if params.IDs, err = px6.ParseProxyIDs(strings.Join(args, ",")); err != nil {
		return err
	}

	if cfg.Safety.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "DRY RUN: would set description %q\n", params.New)
		return nil
	}

	count, err := proxyClient.SetDescription(cmd.Context(), params)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated the description of %d proxies\n", count)
	return nil
}

func runIPAuth(cmd *cobra.Command, args []string) error {
	if removeIPAuth == (len(args) > 0) {
		return errors.New("give either addresses to authorize or --remove")
	}

	target := px6.RemoveIPAuth()
	if !removeIPAuth {
		var err error
		if target, err = px6.NewIPAuth(args...); err != nil {
			return err
		}
	}

	if cfg.Safety.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "DRY RUN: would set authorized addresses to %s\n", target)
		return nil
	}

	if err := proxyClient.IPAuth(cmd.Context(), target); err != nil {
		return err
	}
	if target.Remove() {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Removed all authorized addresses")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Authorized %s\n", target)
	}
	return nil
}
