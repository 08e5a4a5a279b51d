package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CycleReport struct {
	ID             string
	Balance        domain.BalanceSnapshot
	DailyReward    domain.DailyRewardOutcome
	FarmingClaimed bool
	FarmingStarted bool
	ReferralClaim  *domain.ReferralClaim
	Games          []GameReport
	NextSleep      time.Duration
}

// CycleLoop repeats the farming cycle for one account until the session becomes
// invalid or ctx is cancelled.
type CycleLoop struct {
	session  *SessionDriver
	games    *GameRunner
	clock    ports.Clock
	notifier ports.Notifier
	logger   *zap.Logger
	cfg      LoopConfig

	newID  func() string
	jitter func(n int64) int64
}

func NewCycleLoop(session *SessionDriver, clock ports.Clock, notifier ports.Notifier, logger *zap.Logger, cfg LoopConfig) *CycleLoop {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(zap.String("account", string(session.Account().ID)))

	return &CycleLoop{
		session:  session,
		games:    NewGameRunner(session, clock, logger, cfg),
		clock:    clock,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		newID:    func() string { return uuid.NewString() },
		jitter:   rand.Int64N,
	}
}

// Run returns domain.ErrInvalidSession (wrapped) when the account is revoked and
// ctx.Err() when cancelled. Every other failure is retried.
func (l *CycleLoop) Run(ctx context.Context) error {
	defer func() {
		if err := l.session.Close(); err != nil {
			l.logger.Warn("close session", zap.Error(err))
		}
	}()

	if err := l.prepare(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := l.RunCycle(ctx)
		switch {
		case err == nil:
			l.notify(ctx, ports.EventCycleCompleted, summarize(report))
			l.logger.Info("sleeping until next cycle", zap.Duration("sleep", report.NextSleep))
			if err := l.clock.Sleep(ctx, report.NextSleep); err != nil {
				return err
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, domain.ErrInvalidSession):
			l.logger.Error("invalid session", zap.Error(err))
			l.notify(ctx, ports.EventSessionInvalid, err.Error())
			return err
		case errors.Is(err, domain.ErrLoginFailed):
			l.logger.Error("failed login", zap.Error(err), zap.Duration("sleep", l.cfg.LoginBackoff))
			if err := l.clock.Sleep(ctx, l.cfg.LoginBackoff); err != nil {
				return err
			}
		default:
			l.logger.Error("cycle failed", zap.Error(err))
			l.notify(ctx, ports.EventCycleFailed, err.Error())
			if err := l.clock.Sleep(ctx, l.cfg.ErrorPause); err != nil {
				return err
			}
			l.logger.Info("cooling down", zap.Duration("sleep", l.cfg.ErrorCooldown))
			if err := l.clock.Sleep(ctx, l.cfg.ErrorCooldown); err != nil {
				return err
			}
		}
	}
}

func (l *CycleLoop) prepare(ctx context.Context) error {
	if delay := l.startupDelay(); delay > 0 {
		l.logger.Info("delaying start", zap.Duration("delay", delay))
		if err := l.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	if !l.cfg.CheckProxy || l.session.cfg.Proxy == "" {
		return nil
	}

	client, err := l.session.Client()
	if err != nil {
		// Building the client fails the same way in every cycle, let it surface there.
		l.logger.Warn("proxy check skipped", zap.Error(err))
		return nil
	}
	ip, err := client.ProxyIP(ctx)
	if err != nil {
		l.logger.Warn("proxy check failed", zap.Error(err))
		return nil
	}
	l.logger.Info("proxy ok", zap.String("ip", ip))
	return nil
}

func (l *CycleLoop) startupDelay() time.Duration {
	if l.cfg.StartupDelayMax <= 0 {
		return 0
	}
	spread := int64(l.cfg.StartupDelayMax - l.cfg.StartupDelayMin)
	if spread <= 0 {
		return l.cfg.StartupDelayMin
	}
	return l.cfg.StartupDelayMin + time.Duration(l.jitter(spread+1))
}

// RunCycle runs one pass: balance, daily reward, farming, referrals, games, and the
// final balance that decides the next sleep. The client is closed before returning
// successfully.
func (l *CycleLoop) RunCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{ID: l.newID()}
	logger := l.logger.With(zap.String("cycle", report.ID))

	client, err := l.session.EnsureToken(ctx)
	if err != nil {
		return report, err
	}

	balance, err := client.Balance(ctx)
	if err != nil {
		return report, fmt.Errorf("get balance: %w", err)
	}
	report.Balance = balance

	now := l.clock.Now()
	logger.Info("balance", zap.String("available", balance.Available), zap.Int("play_passes", balance.PlayPasses))
	hours, minutes := balance.RemainingHoursMinutes(now)
	if balance.FarmingActive() {
		logger.Info("farming in progress",
			zap.Int("hours_left", hours),
			zap.Int("minutes_left", minutes),
			zap.String("farmed", balance.Farming.Balance),
		)
	} else {
		logger.Warn("no farming information")
	}

	report.DailyReward = ClaimDailyReward(ctx, client, logger)

	if balance.FarmingRemaining(now) <= 0 {
		report.FarmingClaimed, report.FarmingStarted = l.restartFarming(ctx, client, logger)
	}

	report.ReferralClaim = l.claimReferrals(ctx, client, logger, now)

	passes := balance.PlayPasses
	for passes > 0 {
		game, err := l.games.Play(ctx)
		report.Games = append(report.Games, game)
		if err != nil {
			return report, fmt.Errorf("play game: %w", err)
		}

		client, err = l.session.Authorized(ctx)
		if err != nil {
			return report, err
		}
		after, err := client.Balance(ctx)
		if err != nil {
			return report, fmt.Errorf("get balance after game: %w", err)
		}
		passes = after.PlayPasses
		if passes > 0 {
			logger.Info("play passes left, playing again", zap.Int("play_passes", passes))
		} else {
			logger.Info("no play passes left")
		}
	}

	client, err = l.session.Authorized(ctx)
	if err != nil {
		return report, err
	}
	final, err := client.Balance(ctx)
	if err != nil {
		return report, fmt.Errorf("get final balance: %w", err)
	}
	report.Balance = final
	report.NextSleep = final.NextSleep(l.cfg.MinSleep)

	if err := l.session.Close(); err != nil {
		logger.Warn("close client", zap.Error(err))
	}
	logger.Info("cycle complete",
		zap.String("available", final.Available),
		zap.Int("games", len(report.Games)),
		zap.Duration("next_sleep", report.NextSleep),
	)
	return report, nil
}

// ClaimDailyReward requests the daily reward once and classifies the answer. Failures
// are logged and reported as nothing to claim.
func ClaimDailyReward(ctx context.Context, client ports.GameAPI, logger *zap.Logger) domain.DailyRewardOutcome {
	result, err := client.DailyReward(ctx)
	if err != nil {
		logger.Warn("daily reward check failed", zap.Error(err))
		return domain.DailyRewardNothing
	}

	outcome := result.Outcome()
	switch outcome {
	case domain.DailyRewardAlreadyClaimed:
		logger.Warn("daily reward already claimed today")
	case domain.DailyRewardClaimed:
		logger.Info("daily reward claimed", zap.String("outcome", "ok"))
	default:
		logger.Info("no daily reward to claim")
	}
	return outcome
}

// restartFarming claims the farmed balance and only starts a new period when the claim
// succeeded.
func (l *CycleLoop) restartFarming(ctx context.Context, client ports.GameAPI, logger *zap.Logger) (claimed bool, started bool) {
	claim, err := client.ClaimFarming(ctx)
	if err != nil {
		logger.Error("farming claim failed", zap.Error(err))
		return false, false
	}
	logger.Info("farming claimed", zap.String("available", claim.AvailableBalance), zap.String("outcome", "ok"))

	farming, err := client.StartFarming(ctx)
	if err != nil {
		logger.Error("farming start failed", zap.Error(err))
		return true, false
	}
	logger.Info("farming started", zap.Time("ends_at", farming.EndTime), zap.String("outcome", "ok"))
	return true, true
}

func (l *CycleLoop) claimReferrals(ctx context.Context, client ports.GameAPI, logger *zap.Logger, now time.Time) *domain.ReferralClaim {
	referrals, err := client.FriendsBalance(ctx)
	if err != nil {
		logger.Error("friends balance check failed", zap.Error(err))
		return nil
	}

	if !referrals.CanClaim {
		if hours, minutes, ok := referrals.NextClaimIn(now); ok {
			logger.Info("friends balance not claimable yet", zap.Int("hours_left", hours), zap.Int("minutes_left", minutes))
		} else {
			logger.Warn("account has no referrals")
		}
		return nil
	}

	logger.Info("friends balance claimable", zap.String("amount", referrals.AmountForClaim))
	claim, err := client.ClaimFriends(ctx)
	if err != nil || !claim.Claimed {
		logger.Warn("friends balance claim failed", zap.Error(err))
		return nil
	}
	logger.Info("friends balance claimed", zap.String("amount", claim.ClaimBalance), zap.String("outcome", "ok"))
	return &claim
}

func (l *CycleLoop) notify(ctx context.Context, kind ports.EventKind, text string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, ports.Event{Kind: kind, Account: l.session.Account().ID, Text: text}); err != nil {
		l.logger.Warn("notification failed", zap.Error(err))
	}
}

func summarize(report CycleReport) string {
	return fmt.Sprintf("balance %s, play passes %d, games %d, next cycle in %s",
		report.Balance.Available, report.Balance.PlayPasses, len(report.Games), report.NextSleep.Round(time.Second))
}
