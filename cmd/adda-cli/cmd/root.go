package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"adda/internal/bootstrap"
	"adda/internal/config"
	"adda/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
	app    *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "adda-cli",
	Short: "Sync Azure DevOps and Jira projects and export done work items",
	Long: `adda-cli keeps a table of the Azure DevOps and Jira projects of an
organization in sync, lets you pick which projects to export, and writes
their done tasks, PBIs, features and epics as JSON blobs.

Configuration is read from --config, $ADDA_CONFIG or
$XDG_CONFIG_HOME/adda/config.yaml. The environment variables
AzureDevOpsOrganizationUri, JiraOrganizationUri, AddaKeyVaultUri and
DevOpsDataStorageAppSetting override the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help, completion and config commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || isConfigCommand(cmd) {
			return nil
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(os.Stderr, logging.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		})
		if err != nil {
			return err
		}

		app, err = bootstrap.New(cmd.Context(), cfg, logger.Logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
		logger.Close()
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default $ADDA_CONFIG or ~/.config/adda/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

// GetApp returns the initialized application
func GetApp() *bootstrap.App {
	return app
}
