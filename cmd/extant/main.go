package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Motimate/extant-email/config"
	"github.com/Motimate/extant-email/verifier"
)

var version = "dev"

// engineFactory builds the checker used by the check command.
type engineFactory func(cfg *config.Config) (verifier.BatchChecker, func(), error)

func defaultEngineFactory(cfg *config.Config) (verifier.BatchChecker, func(), error) {
	engine, err := verifier.NewEngine(cfg.EngineConfig(logrus.WithField("app", "extant")))
	if err != nil {
		return nil, nil, err
	}
	return engine, engine.Close, nil
}

func newRootCmd(factory engineFactory) *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:     "extant",
		Short:   "Email reachability checker",
		Long:    "Checks whether email addresses exist without sending any mail.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "", "Log level (env LOG_LEVEL)")
	cmd.PersistentFlags().Bool("test-mode", false, "Fabricate probe outcomes instead of contacting mail servers (env APP_TEST_MODE)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		loaded, err := config.New()
		if err != nil {
			return err
		}
		if level, _ := c.Flags().GetString("log-level"); level != "" {
			loaded.LogLevel = level
		}
		if testMode, _ := c.Flags().GetBool("test-mode"); testMode {
			loaded.TestMode = true
		}
		loaded.ConfigureLogger()
		logrus.SetOutput(c.ErrOrStderr())
		cfg = *loaded
		return nil
	}

	cmd.AddCommand(newCmdCheck(&cfg, factory))
	return cmd
}

func main() {
	root := newRootCmd(defaultEngineFactory)
	root.SetContext(context.Background())
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("Failed")
		os.Exit(1)
	}
}
