package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sipwatch/sipwatch-bot/internal/config"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sipwatch/sipwatch-bot/internal/notifications"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/sipwatch/sipwatch-bot/internal/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	skipEmail bool
	debug     bool
	timeout   time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "test-pipeline",
		Short:         "Run the SIP WATCH pipeline once from the terminal",
		Long:          "Fetches news and Reddit sentiment, prints the Gemini report and optionally emails it.\nCredentials are read from the environment or a .env file.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          run,
	}

	cmd.Flags().BoolVar(&skipEmail, "skip-email", false, "print the report without sending it")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall time limit for the run")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logrus.SetLevel(logrus.WarnLevel)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var notifier notifications.NotificationInterface = notifications.NewService(cfg)
	if skipEmail {
		notifier = skippedNotifier{}
	}

	fmt.Println("=== SIP WATCH: Local Pipeline Runner ===")
	fmt.Println("\n[1/3] Fetching Data...")

	service := pipeline.NewService(cfg, notifier).OnStage(func(stage pipeline.Stage, exec *models.Execution) {
		switch stage {
		case pipeline.StageCollect:
			fmt.Printf("  > News:\n%s\n", indent(exec.News))
			fmt.Printf("  > Reddit (%s):\n%s\n", strings.Join(cfg.Subreddits, ", "), indent(exec.Social))
			fmt.Println("\n[2/3] Analyzing with Gemini...")
		case pipeline.StageAnalyze:
			fmt.Println("\n=== GENERATED REPORT ===")
			fmt.Println(exec.Report)
			fmt.Println("========================")
			fmt.Println("\n[3/3] Sending Notification...")
		case pipeline.StageNotify:
			fmt.Printf("  > %s\n", exec.EmailStatus)
		}
	})

	exec := service.Run(ctx)
	fmt.Printf("\nRun %s finished in %v.\n", exec.RunID, exec.Duration.Round(time.Millisecond))
	fmt.Println("\nDone.")
	return nil
}

// skippedNotifier stands in for email delivery under --skip-email
type skippedNotifier struct{}

func (skippedNotifier) Send(ctx context.Context, report string) (*models.NotificationResult, error) {
	return nil, outcome.Missing("Email skipped (--skip-email).")
}

func indent(text string) string {
	if text == "" {
		return "    (empty)"
	}
	return "    " + strings.ReplaceAll(text, "\n", "\n    ")
}
