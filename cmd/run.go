package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errNoAccounts = errors.New("no accounts configured; add one with `bfarm account add`")

func newRunCmd(app *app) *cobra.Command {
	var accountIDs []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Farm every configured account until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			accounts, err := selectAccounts(ctx, app, accountIDs)
			if err != nil {
				return err
			}

			return runAccounts(ctx, app, accounts)
		},
	}

	cmd.Flags().StringSliceVar(&accountIDs, "account", nil, "Account IDs to run (default: all)")

	return cmd
}

func selectAccounts(ctx context.Context, app *app, ids []string) ([]domain.Account, error) {
	if len(ids) == 0 {
		accounts, err := app.accounts.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, errNoAccounts
		}
		return accounts, nil
	}

	accounts := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		account, err := app.accounts.GetAccount(ctx, domain.AccountID(id))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// runAccounts drives one independent cycle loop per account. An account whose
// session turns invalid stops on its own; the others keep running.
func runAccounts(ctx context.Context, app *app, accounts []domain.Account) error {
	notifier := app.newNotifier(ctx)
	group, groupCtx := errgroup.WithContext(ctx)

	app.logger.Info("starting farm", zap.Int("accounts", len(accounts)))
	for _, account := range accounts {
		logger := app.logger.With(zap.String("account", string(account.ID)))
		group.Go(withRecover(logger, func() error {
			session := app.openSession(account)
			loop := application.NewCycleLoop(session, app.clock, notifier, app.logger, app.loop)

			err := loop.Run(groupCtx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
				return nil
			case errors.Is(err, domain.ErrInvalidSession):
				logger.Error("account stopped", zap.Error(err))
				return nil
			default:
				return fmt.Errorf("account %s: %w", account.ID, err)
			}
		}))
	}

	err := group.Wait()
	app.logger.Info("farm stopped")
	return err
}

func withRecover(logger *zap.Logger, f func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return f()
	}
}
