package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/blum-farm-cli/internal/adapters/blum"
	"github.com/bnema/blum-farm-cli/internal/adapters/launch"
	"github.com/bnema/blum-farm-cli/internal/adapters/logging"
	"github.com/bnema/blum-farm-cli/internal/adapters/notify"
	"github.com/bnema/blum-farm-cli/internal/adapters/notify/telegram"
	tomlrepo "github.com/bnema/blum-farm-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/blum-farm-cli/internal/adapters/secrets/chain"
	"github.com/bnema/blum-farm-cli/internal/adapters/useragent"
	"github.com/bnema/blum-farm-cli/internal/application"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"github.com/mattn/go-colorable"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	cfg         *viper.Viper
	logger      *zap.Logger
	repo        ports.AccountRepository
	secretStore ports.SecretStore
	accounts    *application.AccountService
	factory     ports.ClientFactory
	launch      ports.LaunchDataProvider
	clock       ports.Clock
	loop        application.LoopConfig
	newNotifier func(ctx context.Context) ports.Notifier
	now         func() time.Time
}

// wireApp loads configuration only. Adapters are built by build once flags are bound.
func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: zap.NewNop(),
		clock:  ports.SystemClock{},
		now:    time.Now,
	}, nil
}

func (a *app) build() error {
	logger, err := logging.New(logging.Options{
		Level:  a.cfg.GetString("log.level"),
		JSON:   a.cfg.GetBool("log.json"),
		Output: zapcore.Lock(zapcore.AddSync(colorable.NewColorableStderr())),
	})
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}
	a.logger = logger

	repo, err := tomlrepo.NewRepository(a.cfg)
	if err != nil {
		return fmt.Errorf("wire account repository: %w", err)
	}
	a.repo = repo

	secretStore, err := chainstore.NewPassFirstWithFileFallback(a.cfg.GetString("secrets.dir"), logger)
	if err != nil {
		return fmt.Errorf("wire secret store chain: %w", err)
	}
	a.secretStore = secretStore
	a.accounts = application.NewAccountService(repo, secretStore)

	referrals, err := a.referrals()
	if err != nil {
		return err
	}
	a.launch = launch.New(launch.Options{Store: secretStore, Referrals: referrals, Logger: logger})

	a.factory = blum.Factory{
		Base: blum.Config{
			GameURL:       a.cfg.GetString("api.game_url"),
			UserURL:       a.cfg.GetString("api.user_url"),
			ProxyCheckURL: a.cfg.GetString("api.proxy_check_url"),
			Timeout:       a.cfg.GetDuration("api.timeout"),
			FailurePause:  a.cfg.GetDuration("api.failure_pause"),
			MaxRPS:        a.cfg.GetFloat64("api.max_rps"),
			Logger:        logger,
		},
		UserAgents: useragent.Chrome,
	}

	a.loop = application.DefaultLoopConfig()
	if a.cfg.GetBool("startup_delay.enabled") {
		a.loop.StartupDelayMin = a.cfg.GetDuration("startup_delay.min")
		a.loop.StartupDelayMax = a.cfg.GetDuration("startup_delay.max")
	}
	a.loop.CheckProxy = a.cfg.GetBool("proxy.enabled")
	if a.newNotifier == nil {
		a.newNotifier = a.telegramNotifier
	}

	return nil
}

func (a *app) referrals() ([]launch.Referral, error) {
	var weights []float64
	if err := a.cfg.UnmarshalKey("referral.weights", &weights); err != nil {
		return nil, fmt.Errorf("read referral weights: %w", err)
	}
	referrals, err := launch.Referrals(a.cfg.GetStringSlice("referral.ids"), weights)
	if err != nil {
		return nil, fmt.Errorf("wire referrals: %w", err)
	}
	return referrals, nil
}

func (a *app) sessionConfig(account domain.Account) application.SessionConfig {
	cfg := application.SessionConfig{
		Account:         account,
		RandomUserAgent: a.cfg.GetBool("user_agent.randomize"),
	}
	if a.cfg.GetBool("proxy.enabled") {
		cfg.Proxy = account.Proxy
	}
	return cfg
}

func (a *app) openSession(account domain.Account) *application.SessionDriver {
	return application.NewSessionDriver(a.sessionConfig(account), a.factory, a.launch, a.clock, a.logger)
}

func (a *app) taskService() *application.TaskService {
	return application.NewTaskService(a.repo, a.openSession, a.logger)
}

func (a *app) statusService() *application.StatusService {
	return application.NewStatusService(a.repo, a.openSession, a.clock, a.logger)
}

// telegramNotifier connects the bot when a token and chat are configured. A bot that
// cannot be reached is logged and replaced by a no-op notifier.
func (a *app) telegramNotifier(ctx context.Context) ports.Notifier {
	token := a.cfg.GetString("notify.telegram.token")
	chatID := a.cfg.GetInt64("notify.telegram.chat_id")
	if token == "" || chatID == 0 {
		return notify.Nop{}
	}

	notifier, err := telegram.New(ctx, telegram.Options{Token: token, ChatID: chatID, Logger: a.logger})
	if err != nil {
		a.logger.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return notifier
}
