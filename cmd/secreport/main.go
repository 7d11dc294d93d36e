// Package main provides the secreport command line: batch conversion of
// security-audit exports into notification reports, and the web front end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mpgamer75/code-altice/internal/app"
	"github.com/mpgamer75/code-altice/internal/config"
)

var (
	configFile string
	inputDir   string
	tempDir    string
	outputDir  string
	logLevel   string
	logFile    string

	application *app.Application
)

var rootCmd = &cobra.Command{
	Use:   "secreport",
	Short: "Convert security-audit exports into notification reports",
	Long: `secreport reads security-audit exports (.xls, .xlsx, .csv) from an input
folder, extracts their header block, unique client IPs and failure reasons
into intermediate reports, then wraps each one in the notification text.

Directories default to xls_folder, reports and rapport2 and can be set in
secreport.yaml, SECREPORT_PATHS_* environment variables, a .env file or flags.`,
	SilenceUsage:       true,
	PersistentPreRunE:  func(_ *cobra.Command, _ []string) error { return loadApp() },
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error { return closeApp(cmd.Context()) },
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: secreport.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "Folder holding the audit exports")
	rootCmd.PersistentFlags().StringVarP(&tempDir, "temp", "t", "", "Folder for intermediate reports")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Folder for final reports")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path")
}

// loadApp builds the application from config, environment and flags
func loadApp() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if inputDir != "" {
		cfg.Paths.InputDir = inputDir
	}
	if tempDir != "" {
		cfg.Paths.TempDir = tempDir
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.FilePath = logFile
		cfg.Logging.Output = "file"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	application = a
	return nil
}

func closeApp(ctx context.Context) error {
	if application == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := application.Close(ctx)
	application = nil
	return err
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
