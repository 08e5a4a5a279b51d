package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"go.uber.org/zap"
)

// SessionConfig is everything one account's session needs. It is built by the caller
// and owned by a single SessionDriver.
type SessionConfig struct {
	Account         domain.Account
	Proxy           string
	RandomUserAgent bool
}

// SessionDriver owns the bearer token and the HTTP client of one account. It is not
// safe for concurrent use; every account gets its own driver.
type SessionDriver struct {
	cfg     SessionConfig
	factory ports.ClientFactory
	launch  ports.LaunchDataProvider
	clock   ports.Clock
	logger  *zap.Logger

	client ports.GameAPI
	token  domain.Token
}

func NewSessionDriver(cfg SessionConfig, factory ports.ClientFactory, launch ports.LaunchDataProvider, clock ports.Clock, logger *zap.Logger) *SessionDriver {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionDriver{
		cfg:     cfg,
		factory: factory,
		launch:  launch,
		clock:   clock,
		logger:  logger.With(zap.String("account", string(cfg.Account.ID))),
	}
}

func (d *SessionDriver) Account() domain.Account {
	return d.cfg.Account
}

func (d *SessionDriver) Token() domain.Token {
	return d.token
}

// Client returns the current client, building a new one when none exists or the
// previous one was closed.
func (d *SessionDriver) Client() (ports.GameAPI, error) {
	if d.client != nil && !d.client.Closed() {
		return d.client, nil
	}
	if d.client != nil {
		_ = d.client.Close()
	}

	client, err := d.factory.NewClient(ports.ClientConfig{
		Proxy:           d.cfg.Proxy,
		RandomUserAgent: d.cfg.RandomUserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}
	if d.token.Valid() {
		client.SetBearer(d.token.Bearer())
	}

	d.client = client
	d.logger.Debug("api client ready")
	return client, nil
}

// EnsureToken logs in when no token exists or the recorded expiry has passed and
// returns a client carrying a usable bearer. Login failures wrap domain.ErrLoginFailed;
// a revoked account surfaces domain.ErrInvalidSession.
func (d *SessionDriver) EnsureToken(ctx context.Context) (ports.GameAPI, error) {
	client, err := d.Client()
	if err != nil {
		return nil, err
	}

	now := d.clock.Now()
	if d.token.Valid() && !d.token.Expired(now) {
		return client, nil
	}
	if d.token.Valid() {
		d.logger.Warn("token expired, logging in again")
	}

	data, err := d.launch.Resolve(ctx, d.cfg.Account)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("resolve launch data: %w: %w", domain.ErrLoginFailed, err)
	}
	if data.Empty() {
		return nil, fmt.Errorf("resolve launch data: %w: empty init data", domain.ErrLoginFailed)
	}

	token, err := client.Login(ctx, data.InitData)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("login: %w: %w", domain.ErrLoginFailed, err)
	}

	d.store(client, token, now)
	d.logger.Info("login successful", zap.Time("expires_at", d.token.ExpiresAt))
	return client, nil
}

// Authorized returns a client whose token has not passed its recorded expiry. An
// expired token is refreshed first and a failed refresh falls back to a new login.
func (d *SessionDriver) Authorized(ctx context.Context) (ports.GameAPI, error) {
	if !d.token.Valid() || !d.token.Expired(d.clock.Now()) {
		return d.EnsureToken(ctx)
	}

	d.logger.Warn("token expired, refreshing")
	if err := d.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.logger.Warn("token refresh failed, logging in again", zap.Error(err))
		return d.EnsureToken(ctx)
	}
	return d.Client()
}

// Refresh exchanges the previous token for a new one and updates the expiry the same
// way a login does.
func (d *SessionDriver) Refresh(ctx context.Context) error {
	client, err := d.Client()
	if err != nil {
		return err
	}

	previous := d.token.Bearer()
	if previous == "" {
		return fmt.Errorf("refresh token: %w: no previous token", domain.ErrLoginFailed)
	}

	now := d.clock.Now()
	token, err := client.RefreshToken(ctx, previous)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	d.store(client, token, now)
	d.logger.Info("token refreshed", zap.Time("expires_at", d.token.ExpiresAt))
	return nil
}

func (d *SessionDriver) store(client ports.GameAPI, token domain.Token, now time.Time) {
	d.token = token.Issued(now)
	client.SetBearer(d.token.Bearer())
}

// Close releases the client and its proxy connector. The token is kept; the next call
// to Client builds a fresh client.
func (d *SessionDriver) Close() error {
	if d.client == nil || d.client.Closed() {
		return nil
	}
	if err := d.client.Close(); err != nil {
		return fmt.Errorf("close api client: %w", err)
	}
	d.logger.Debug("api client closed")
	return nil
}
