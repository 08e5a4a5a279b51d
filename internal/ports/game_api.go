package ports

import (
	"context"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

// GameAPI is the request-helper layer: every method maps to exactly one HTTP call.
// Failures that could not complete come back as *domain.RequestError and server
// refusals as *domain.APIError, unless the method folds the message into its result.
type GameAPI interface {
	Login(ctx context.Context, initData string) (domain.Token, error)
	RefreshToken(ctx context.Context, refresh string) (domain.Token, error)
	SetBearer(token string)

	Balance(ctx context.Context) (domain.BalanceSnapshot, error)
	DailyReward(ctx context.Context) (domain.DailyRewardResult, error)
	ClaimFarming(ctx context.Context) (domain.FarmingClaim, error)
	StartFarming(ctx context.Context) (domain.Farming, error)

	FriendsBalance(ctx context.Context) (domain.ReferralBalance, error)
	ClaimFriends(ctx context.Context) (domain.ReferralClaim, error)

	PlayGame(ctx context.Context) (domain.GameSession, error)
	ClaimGame(ctx context.Context, gameID string, points int) (domain.ClaimResult, error)

	Tasks(ctx context.Context) ([]domain.Task, error)
	StartTask(ctx context.Context, taskID string) (domain.Task, error)
	CheckTask(ctx context.Context, taskID string) (domain.Task, error)
	ClaimTask(ctx context.Context, taskID string) (domain.Task, error)

	// ProxyIP reports the public address requests leave from.
	ProxyIP(ctx context.Context) (string, error)

	// Close drops idle connections and releases the proxy connector.
	Close() error
	Closed() bool
}

type ClientConfig struct {
	Proxy           string
	RandomUserAgent bool
}

type ClientFactory interface {
	NewClient(cfg ClientConfig) (GameAPI, error)
}

// LaunchDataProvider stands in for the chat-platform client that launches the
// mini-app. Returning domain.ErrInvalidSession ends the account run.
type LaunchDataProvider interface {
	Resolve(ctx context.Context, account domain.Account) (domain.LaunchData, error)
}
