package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/folio/internal/probe"
	"github.com/okian/folio/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout = 10 * time.Second
	defaultPoll    = 250 * time.Millisecond
	defaultWait    = 30 * time.Second
)

var cfg = probe.Config{Poll: defaultPoll, Wait: defaultWait}

var (
	logFormat    string
	contactCount int
)

var rootCmd = &cobra.Command{
	Use:           "probe",
	Short:         "Check a running folio instance",
	Long:          `Checks health, portfolio content and the GitHub dashboard of a folio instance, and optionally pushes contact forms through the relay.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.Verbose {
			return logger.SetLevelString("debug")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := probe.Run(cmd.Context(), &cfg)
		return err
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check /healthz",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return probe.CheckHealth(cmd.Context(), client())
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Fetch and verify /api/github",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := probe.CheckDashboard(cmd.Context(), client())
		return err
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Submit contact forms end to end",
	Long:  `Opens sessions, submits the form and polls each until it succeeds or fails. Every session sends a real message through the configured relay.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg.Sessions = contactCount
		var stats probe.Stats
		if err := probe.SubmitForms(cmd.Context(), client(), &cfg, &stats); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "opened=%d succeeded=%d failed=%d rejected=%d timed_out=%d\n",
			stats.SessionsOpened, stats.SessionsSucceeded, stats.SessionsFailed, stats.SessionsRejected, stats.SessionsTimedOut)
		return nil
	},
}

func client() *probe.Client { return probe.NewClient(cfg.BaseURL, cfg.Timeout) }

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	pf.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")

	rootCmd.Flags().IntVar(&cfg.Sessions, "sessions", 0, "Contact sessions to submit; zero skips the contact step")
	contactCmd.Flags().IntVar(&contactCount, "sessions", 1, "Contact sessions to submit")

	// both commands share the form and pacing flags
	for _, c := range []*cobra.Command{rootCmd, contactCmd} {
		f := c.Flags()
		f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Concurrent contact sessions")
		f.DurationVar(&cfg.Wait, "wait", defaultWait, "Max time a submission may stay pending")
		f.StringVar(&cfg.Form.Name, "name", "folio probe", "Form name field")
		f.StringVar(&cfg.Form.Email, "email", "probe@example.com", "Form email field")
		f.StringVar(&cfg.Form.Subject, "subject", "", "Form subject field")
		f.StringVar(&cfg.Form.Message, "message", "Probe message", "Form message field")
	}

	rootCmd.AddCommand(healthCmd, dashboardCmd, contactCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
