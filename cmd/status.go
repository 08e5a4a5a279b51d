package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	statusadapter "github.com/bnema/blum-farm-cli/internal/adapters/render/status"
	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/spf13/cobra"
)

const defaultStaleAfter = 10 * time.Minute

func newStatusCmd(app *app) *cobra.Command {
	var (
		accountIDs []string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Log in and show balance, farming and referral state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := make([]domain.AccountID, 0, len(accountIDs))
			for _, id := range accountIDs {
				ids = append(ids, domain.AccountID(id))
			}
			service := app.statusService()

			if asJSON {
				statuses, err := service.Snapshot(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				return writeStatusesJSON(cmd.OutOrStdout(), statuses)
			}

			view, _, err := statusadapter.Live(cmd.Context(), func(ctx context.Context) ([]application.AccountStatus, error) {
				return service.Snapshot(ctx, ids...)
			}, statusadapter.LiveOptions{
				Label:      "Fetching account status...",
				Progress:   cmd.ErrOrStderr(),
				StaleAfter: defaultStaleAfter,
				Now:        app.now,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), view)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&accountIDs, "account", nil, "Account IDs (default: all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of the styled view")

	return cmd
}

type statusJSON struct {
	Account     domain.Account          `json:"account"`
	Balance     domain.BalanceSnapshot  `json:"balance"`
	Referral    *domain.ReferralBalance `json:"referral,omitempty"`
	TokenExpiry *time.Time              `json:"token_expiry,omitempty"`
	CapturedAt  *time.Time              `json:"captured_at,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

func writeStatusesJSON(w io.Writer, statuses []application.AccountStatus) error {
	rows := make([]statusJSON, 0, len(statuses))
	for _, status := range statuses {
		row := statusJSON{
			Account:     status.Account,
			Balance:     status.Balance,
			Referral:    status.Referral,
			TokenExpiry: timeOrNil(status.TokenExpiry),
			CapturedAt:  timeOrNil(status.CapturedAt),
		}
		if status.Err != nil {
			row.Error = status.Err.Error()
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
