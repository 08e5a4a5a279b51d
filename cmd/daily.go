package cmd

import (
	"fmt"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newDailyCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Claim the daily reward once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome, err := app.taskService().ClaimDailyReward(cmd.Context(), domain.AccountID(accountID))
			if err != nil {
				return err
			}

			var message string
			switch outcome {
			case domain.DailyRewardClaimed:
				message = "daily reward claimed"
			case domain.DailyRewardAlreadyClaimed:
				message = "daily reward already claimed today"
			default:
				message = "no daily reward to claim"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
