package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perAccountOpener gives every account its own scripted API so concurrent fetches
// never share a fake.
func perAccountOpener(apis map[domain.AccountID]*fakeGameAPI) SessionOpener {
	return func(account domain.Account) *SessionDriver {
		return NewSessionDriver(
			SessionConfig{Account: account},
			&fakeFactory{api: apis[account.ID]},
			staticLaunch{data: domain.LaunchData{InitData: "init"}},
			newFakeClock(),
			nil,
		)
	}
}

func TestStatusServiceSnapshotKeepsPerAccountErrors(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	clock := newFakeClock()
	now := clock.Now()
	canClaimAt := now.Add(2 * time.Hour)

	apis := map[domain.AccountID]*fakeGameAPI{
		"main": {
			balances: []domain.BalanceSnapshot{farmingUntil(now, time.Hour, 3)},
			friends:  domain.ReferralBalance{AmountForClaim: "12.5", CanClaimAt: &canClaimAt},
		},
		"broken": {balanceErr: &domain.RequestError{Op: "balance", Err: errors.New("timeout")}},
		"nofriends": {
			balances:   []domain.BalanceSnapshot{{Available: "5", Timestamp: now}},
			friendsErr: errors.New("friends unavailable"),
		},
	}
	accounts := []domain.Account{{ID: "main"}, {ID: "broken"}, {ID: "nofriends"}}
	repo.EXPECT().List(mockAnyContext()).Return(accounts, nil)

	service := NewStatusService(repo, perAccountOpener(apis), clock, nil)
	statuses, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	main := statuses[0]
	require.True(t, main.OK())
	assert.Equal(t, domain.AccountID("main"), main.Account.ID)
	assert.Equal(t, 3, main.Balance.PlayPasses)
	require.NotNil(t, main.Referral)
	assert.Equal(t, "12.5", main.Referral.AmountForClaim)
	assert.Equal(t, now, main.CapturedAt)
	assert.False(t, main.TokenExpiry.IsZero())

	broken := statuses[1]
	require.False(t, broken.OK())
	assert.ErrorContains(t, broken.Err, "timeout")

	noFriends := statuses[2]
	require.True(t, noFriends.OK())
	assert.Nil(t, noFriends.Referral)
	assert.Equal(t, "5", noFriends.Balance.Available)

	for id, api := range apis {
		assert.True(t, api.Closed(), "client for %s must be closed", id)
	}
}

func TestStatusServiceSnapshotSelectedAccounts(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	apis := map[domain.AccountID]*fakeGameAPI{
		"alt": {balances: []domain.BalanceSnapshot{{Available: "1"}}},
	}
	repo.EXPECT().GetByID(mockAnyContext(), domain.AccountID("alt")).Return(domain.Account{ID: "alt"}, nil)

	service := NewStatusService(repo, perAccountOpener(apis), newFakeClock(), nil)
	statuses, err := service.Snapshot(context.Background(), "alt")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "1", statuses[0].Balance.Available)
}

func TestStatusServiceSnapshotLoginFailureIsPerAccount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	apis := map[domain.AccountID]*fakeGameAPI{
		"main": {loginResults: []tokenResult{{err: &domain.APIError{Op: "login", StatusCode: 500, Message: "down"}}}},
	}
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Account{{ID: "main"}}, nil)

	service := NewStatusService(repo, perAccountOpener(apis), newFakeClock(), nil)
	statuses, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.ErrorIs(t, statuses[0].Err, domain.ErrLoginFailed)
}

func TestStatusServiceSnapshotUnknownAccount(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().GetByID(mockAnyContext(), domain.AccountID("ghost")).Return(domain.Account{}, domain.ErrAccountNotFound)

	service := NewStatusService(repo, perAccountOpener(nil), newFakeClock(), nil)
	_, err := service.Snapshot(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
