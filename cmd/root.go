package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bfarm",
		Short:         "Blum farming bot: claims, farms and plays for your accounts",
		Long:          "bfarm keeps Blum mini-app accounts busy: it logs in with stored init data, claims daily and farming rewards, collects referral balances and spends play passes, one loop per account.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", app.cfg.GetString("log.level"), "Log level (debug|info|warn|error)")
	flags.Bool("log-json", app.cfg.GetBool("log.json"), "Emit JSON log lines")
	flags.Bool("use-proxy", app.cfg.GetBool("proxy.enabled"), "Route each account through its configured proxy")
	_ = app.cfg.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = app.cfg.BindPFlag("log.json", flags.Lookup("log-json"))
	_ = app.cfg.BindPFlag("proxy.enabled", flags.Lookup("use-proxy"))

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if err := app.build(); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newRunCmd(app),
		newStatusCmd(app),
		newTasksCmd(app),
		newDailyCmd(app),
	)

	return rootCmd
}
