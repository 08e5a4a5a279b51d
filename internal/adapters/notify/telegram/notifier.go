package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/blum-farm-cli/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	maxConnectAttempts = 3
	connectRetryBase   = 2 * time.Second
	connectRetryGrowth = 2
)

type Options struct {
	Token  string
	ChatID int64
	// Endpoint overrides tgbotapi.APIEndpoint, mainly for tests.
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Sleep      func(ctx context.Context, d time.Duration) error
}

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// New connects to the bot API, retrying transient failures with a growing delay.
func New(ctx context.Context, opts Options) (*Notifier, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = tgbotapi.APIEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Sleep == nil {
		opts.Sleep = ports.SystemClock{}.Sleep
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		bot *tgbotapi.BotAPI
		err error
	)
	delay := connectRetryBase
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		bot, err = tgbotapi.NewBotAPIWithClient(opts.Token, opts.Endpoint, opts.HTTPClient)
		if err == nil {
			break
		}
		if attempt == maxConnectAttempts {
			break
		}
		logger.Warn("telegram connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
		delay *= connectRetryGrowth
	}
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot after %d attempts: %w", maxConnectAttempts, err)
	}

	return &Notifier{bot: bot, chatID: opts.ChatID, logger: logger}, nil
}

func (n *Notifier) Notify(ctx context.Context, event ports.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatEvent(event))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatEvent(event ports.Event) string {
	var title string
	switch event.Kind {
	case ports.EventCycleCompleted:
		title = "cycle completed"
	case ports.EventCycleFailed:
		title = "cycle failed"
	case ports.EventSessionInvalid:
		title = "session invalid, account stopped"
	default:
		title = string(event.Kind)
	}

	if event.Text == "" {
		return fmt.Sprintf("[%s] %s", event.Account, title)
	}
	return fmt.Sprintf("[%s] %s\n%s", event.Account, title, event.Text)
}
