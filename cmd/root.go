package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/px6ctl/config"
	"github.com/s0up4200/px6ctl/filter"
	"github.com/s0up4200/px6ctl/proxies"
	"github.com/s0up4200/px6ctl/px6"
)

var (
	cfgFile     string
	cfg         *config.Config
	logger      zerolog.Logger
	registry    *prometheus.Registry
	px6Client   *px6.Client
	proxyClient *proxies.Client
	operations  *proxies.Operations
	filters     *filter.Manager

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	filterExpr   string
	preset       string
	dryRun       bool
	assumeYes    bool
	outputFormat string
	stateFlag    string
	descrFlag    string
	showCreds    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "px6ctl",
	Short: "Manage px6.link proxies from the command line",
	Long: `px6ctl is a CLI tool for the px6.link proxy API. It lists, buys, prolongs,
checks and deletes proxies, and can select proxies with filter expressions.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: writeMetrics,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// SetVersion records the build information reported by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := exitCode(err)
		logger.Debug().Err(err).Str("kind", px6.KindOf(err).String()).Int("exit_code", code).Msg("Command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(code)
	}
}

// Exit statuses, one per error kind
const (
	exitFailure            = 1
	exitValidation         = 2
	exitTransport          = 3
	exitRateLimited        = 4
	exitDocumented         = 5
	exitUnexpectedResponse = 6
)

// exitCode maps err to the process exit status
func exitCode(err error) int {
	switch px6.KindOf(err) {
	case px6.KindNone:
		return 0
	case px6.KindValidation:
		return exitValidation
	case px6.KindTransport:
		return exitTransport
	case px6.KindRateLimited:
		return exitRateLimited
	case px6.KindDocumented:
		return exitDocumented
	case px6.KindUnexpectedResponse:
		return exitUnexpectedResponse
	default:
		return exitFailure
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "perform a dry run without making changes")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override config from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}
	if outputFormat != "" {
		switch outputFormat {
		case "table", "json", "yaml":
			cfg.Output.Format = outputFormat
		default:
			return fmt.Errorf("invalid output format: %s (must be table, json or yaml)", outputFormat)
		}
	}

	registry = prometheus.NewRegistry()

	opts := []px6.Option{
		px6.WithBaseURL(cfg.PX6.BaseURL),
		px6.WithTimeout(cfg.PX6.Timeout),
		px6.WithMetrics(px6.NewMetrics(registry)),
	}
	if cfg.PX6.UserAgent != "" {
		opts = append(opts, px6.WithUserAgent(cfg.PX6.UserAgent))
	}

	// Create px6 client
	px6Client, err = px6.NewClient(cfg.PX6.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create px6 client: %w", err)
	}

	proxyClient = proxies.NewClient(px6Client, logger,
		proxies.WithRetryPolicy(proxies.RetryPolicy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		}),
		proxies.WithCountFetcher(px6Client.Async()),
	)
	operations = proxies.NewOperations(proxyClient, logger)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Expressions()); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// writeMetrics dumps the client metrics to the configured textfile
func writeMetrics(cmd *cobra.Command, args []string) error {
	if cfg == nil || registry == nil || cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics")
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirmEnabled reports whether a mutating command should prompt first.
// Prompting needs a terminal on stdin, so scripts must pass --yes.
func confirmEnabled() (bool, error) {
	if cfg.Safety.DryRun || assumeYes || !cfg.Safety.Confirm {
		return false, nil
	}
	if !isTerminal(os.Stdin) {
		return false, errors.New("confirmation required but stdin is not a terminal, pass --yes to proceed")
	}
	return true, nil
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List proxies matching the filter criteria",
	Long: `List the proxies on your px6 account. The API can select by state and
description; a filter expression or preset narrows the result further.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	listCmd.Flags().StringVar(&stateFlag, "state", "", "proxy state: active, expired (or inactive), expiring or all")
	listCmd.Flags().StringVar(&descrFlag, "descr", "", "only proxies with this description")
	listCmd.Flags().BoolVar(&showCreds, "credentials", false, "show proxy usernames and passwords")
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := searchOptions()
	if err != nil {
		return err
	}

	list, err := searchProxies(cmd.Context(), opts, true)
	if err != nil {
		return err
	}

	if !showCreds {
		for i := range list {
			list[i].Pass = ""
		}
	}

	return render(cmd.OutOrStdout(), list, func() string {
		return proxies.NewConsoleFormatter().FormatProxyList(list, proxies.FormatOptions{
			ShowDetails:     cfg.Output.ShowDetails,
			ShowCredentials: showCreds,
		})
	})
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [ids...]",
	Short: "Delete proxies",
	Long: `Delete proxies selected by id, by description or by a filter expression.
A preview is shown and confirmation requested unless --yes is given.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name")
	deleteCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	deleteCmd.Flags().StringVar(&descrFlag, "descr", "", "delete every proxy with this description")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && descrFlag == "" && filterExpr == "" && preset == "" {
		return errors.New("select proxies to delete by id, --descr or --filter")
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
	return operations.DeleteProxies(cmd.Context(), targets, proxies.DeleteOptions{
		DryRun:        cfg.Safety.DryRun,
		ConfirmDelete: confirm,
	})
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to px6",
	Long:  `Test the connection to the px6 API and display basic account information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Testing connection to px6 at %s...\n", px6Client.BaseURL())
	if err := proxyClient.TestConnection(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	list, account, err := proxyClient.GetAllProxies(ctx, 0, px6.Description{})
	if err != nil {
		return fmt.Errorf("failed to get proxies: %w", err)
	}

	var active int
	for _, p := range list {
		if p.Active {
			active++
		}
	}

	fmt.Fprintf(out, "\nAccount:\n")
	fmt.Fprintf(out, "- User ID: %s\n", account.UserID)
	fmt.Fprintf(out, "- Balance: %.2f %s\n", account.Balance.Float(), account.Currency)
	fmt.Fprintf(out, "- Proxies: %d (%d active)\n", len(list), active)

	if names := filters.ListFilters(); len(names) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range names {
			fmt.Fprintf(out, "  • %s\n", name)
		}
	}

	return nil
}

// searchOptions builds the API-side selection from --state and --descr
func searchOptions() (proxies.SearchOptions, error) {
	var opts proxies.SearchOptions
	if stateFlag != "" {
		state, err := px6.ParseProxyState(stateFlag)
		if err != nil {
			return opts, err
		}
		opts.State = state
	}
	if descrFlag != "" {
		descr, err := px6.NewDescription(descrFlag)
		if err != nil {
			return opts, err
		}
		opts.Description = descr
	}
	return opts, nil
}

// getFilter determines the filter to use. A nil filter matches every proxy.
func getFilter(useDefault bool) (filter.CompiledFilter, error) {
	// Priority: command line filter > preset > default
	if filterExpr != "" {
		f, err := filters.Resolve(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		if f, ok := filters.GetFilter(preset); ok {
			return f, nil
		}
		return nil, fmt.Errorf("preset '%s' not found in config", preset)
	}

	if useDefault && cfg.Filter.DefaultExpression != "" {
		f, err := filters.Resolve(cfg.Filter.DefaultExpression)
		if err != nil {
			return nil, fmt.Errorf("invalid default filter: %w", err)
		}
		return f, nil
	}

	return nil, nil
}

// searchProxies lists proxies selected by opts and the active filter
func searchProxies(ctx context.Context, opts proxies.SearchOptions, useDefault bool) ([]proxies.ProxyInfo, error) {
	f, err := getFilter(useDefault)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return operations.GetAllProxies(ctx, opts)
	}

	logger.Info().Str("filter", f.Expression()).Msg("Searching proxies")

	return operations.SearchProxies(ctx, opts, func(p proxies.ProxyInfo) bool {
		ok, err := f.Match(p)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", p.ID).Msg("Filter evaluation failed")
		}
		return ok
	})
}

// selectProxies resolves the proxies a mutating command acts on: the given
// ids, or everything matching --descr and the filter flags
func selectProxies(ctx context.Context, ids []string) ([]proxies.ProxyInfo, error) {
	opts, err := searchOptions()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return searchProxies(ctx, opts, false)
	}

	wanted, err := px6.ParseProxyIDs(strings.Join(ids, ","))
	if err != nil {
		return nil, err
	}

	all, err := operations.GetAllProxies(ctx, opts)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]proxies.ProxyInfo, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	selected := make([]proxies.ProxyInfo, 0, wanted.Len())
	for _, id := range wanted.Strings() {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("proxy %s not found on this account", id)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
