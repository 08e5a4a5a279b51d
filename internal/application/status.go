package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const statusConcurrency = 4

// StatusService takes a one-shot snapshot of accounts: login, balance and referral
// balance. A failing account does not fail the snapshot.
type StatusService struct {
	repo   ports.AccountRepository
	open   SessionOpener
	clock  ports.Clock
	logger *zap.Logger
}

func NewStatusService(repo ports.AccountRepository, open SessionOpener, clock ports.Clock, logger *zap.Logger) *StatusService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{repo: repo, open: open, clock: clock, logger: logger}
}

// Snapshot returns one status per account in repository order. With ids set only
// those accounts are fetched; an unknown id is an error.
func (s *StatusService) Snapshot(ctx context.Context, ids ...domain.AccountID) ([]AccountStatus, error) {
	accounts, err := s.accounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	statuses := make([]AccountStatus, len(accounts))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(statusConcurrency)

	for i, account := range accounts {
		group.Go(func() error {
			statuses[i] = s.fetch(groupCtx, account)
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *StatusService) accounts(ctx context.Context, ids []domain.AccountID) ([]domain.Account, error) {
	if len(ids) == 0 {
		accounts, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		return accounts, nil
	}

	accounts := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		account, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get account %s: %w", id, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *StatusService) fetch(ctx context.Context, account domain.Account) (status AccountStatus) {
	status.Account = account
	logger := s.logger.With(zap.String("account", string(account.ID)))

	session := s.open(account)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("close session", zap.Error(err))
		}
	}()

	client, err := session.EnsureToken(ctx)
	if err != nil {
		status.Err = err
		return status
	}
	token := session.Token()
	status.TokenExpiry = token.ClaimsExpiry
	if status.TokenExpiry.IsZero() {
		status.TokenExpiry = token.ExpiresAt
	}

	balance, err := client.Balance(ctx)
	if err != nil {
		status.Err = fmt.Errorf("balance: %w", err)
		return status
	}
	status.Balance = balance
	status.CapturedAt = s.clock.Now()

	referral, err := client.FriendsBalance(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			status.Err = err
			return status
		}
		logger.Warn("referral balance unavailable", zap.Error(err))
		return status
	}
	status.Referral = &referral
	return status
}
