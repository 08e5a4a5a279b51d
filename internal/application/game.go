package application

import (
	"context"
	"fmt"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"go.uber.org/zap"
)

type GameReport struct {
	GameID string
	// Starts counts start attempts, including the ones that returned no game id.
	Starts    int
	Polls     int
	Refreshes int
	Outcome   domain.ClaimOutcome
	Payload   string
}

// GameRunner plays one round: start, speculative claim, then poll the claim endpoint
// until the server reports the round finished or gone.
type GameRunner struct {
	session *SessionDriver
	clock   ports.Clock
	logger  *zap.Logger
	cfg     LoopConfig
}

func NewGameRunner(session *SessionDriver, clock ports.Clock, logger *zap.Logger, cfg LoopConfig) *GameRunner {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GameRunner{session: session, clock: clock, logger: logger, cfg: cfg.withDefaults()}
}

// Play returns once the round is over. A failed start request or a session that
// cannot be authorized ends the round early with an error.
func (g *GameRunner) Play(ctx context.Context) (GameReport, error) {
	var report GameReport

	game, err := g.start(ctx, &report)
	if err != nil {
		return report, err
	}
	report.GameID = game.ID
	logger := g.logger.With(zap.String("game", game.ID))

	client, err := g.session.Authorized(ctx)
	if err != nil {
		return report, err
	}
	// The round is still running, so this claim is expected to be refused.
	if _, err := client.ClaimGame(ctx, game.ID, g.cfg.GamePoints); err != nil {
		logger.Debug("speculative claim failed", zap.Error(err))
	}

	for {
		if err := g.clock.Sleep(ctx, g.cfg.PollInterval); err != nil {
			return report, err
		}

		client, err := g.session.Authorized(ctx)
		if err != nil {
			return report, err
		}

		result, err := client.ClaimGame(ctx, game.ID, g.cfg.GamePoints)
		report.Polls++
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("game claim failed, retrying", zap.Error(err))
			continue
		}

		switch outcome := result.Outcome(); outcome {
		case domain.ClaimNotFinished:
			logger.Info("game not finished, still playing")
		case domain.ClaimTokenInvalid:
			logger.Warn("token is invalid, refreshing")
			report.Refreshes++
			if err := g.session.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				logger.Error("token refresh failed", zap.Error(err))
			}
		case domain.ClaimSessionNotFound:
			report.Outcome = outcome
			logger.Info("game session ended by server")
			return report, nil
		default:
			report.Outcome = outcome
			report.Payload = result.Payload
			logger.Info("game finished",
				zap.Int("points", g.cfg.GamePoints),
				zap.String("message", result.Message),
				zap.String("payload", result.Payload),
			)
			return report, nil
		}
	}
}

// start retries while the server answers without a game id. A failed request is
// returned so the cycle cools down before trying again.
func (g *GameRunner) start(ctx context.Context, report *GameReport) (domain.GameSession, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.GameSession{}, err
		}

		client, err := g.session.Authorized(ctx)
		if err != nil {
			return domain.GameSession{}, err
		}

		g.logger.Info("starting game")
		game, err := client.PlayGame(ctx)
		report.Starts++

		if sleepErr := g.clock.Sleep(ctx, g.cfg.Pacing); sleepErr != nil {
			return domain.GameSession{}, sleepErr
		}
		if err != nil {
			if ctx.Err() != nil {
				return domain.GameSession{}, ctx.Err()
			}
			g.logger.Error("game could not be started", zap.Error(err))
			return domain.GameSession{}, fmt.Errorf("start game: %w", err)
		}
		if game.ID != "" {
			return game, nil
		}
		g.logger.Warn("game could not be started, retrying", zap.Error(domain.ErrNoGameID))
	}
}
