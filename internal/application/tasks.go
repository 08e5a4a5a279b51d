package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"go.uber.org/zap"
)

var ErrTaskIDRequired = errors.New("task id is required")

// SessionOpener builds a fresh session for one account. One-shot services open a
// session per call and close it before returning.
type SessionOpener func(account domain.Account) *SessionDriver

// TaskService runs one-off account operations outside the cycle loop.
type TaskService struct {
	repo   ports.AccountRepository
	open   SessionOpener
	logger *zap.Logger
}

func NewTaskService(repo ports.AccountRepository, open SessionOpener, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, open: open, logger: logger}
}

func (s *TaskService) ListTasks(ctx context.Context, id domain.AccountID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.withClient(ctx, id, func(client ports.GameAPI, _ *zap.Logger) error {
		var err error
		tasks, err = client.Tasks(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	return tasks, err
}

func (s *TaskService) StartTask(ctx context.Context, id domain.AccountID, taskID string) (domain.Task, error) {
	return s.taskAction(ctx, id, taskID, "start task", ports.GameAPI.StartTask)
}

func (s *TaskService) CheckTask(ctx context.Context, id domain.AccountID, taskID string) (domain.Task, error) {
	return s.taskAction(ctx, id, taskID, "check task", ports.GameAPI.CheckTask)
}

func (s *TaskService) ClaimTask(ctx context.Context, id domain.AccountID, taskID string) (domain.Task, error) {
	return s.taskAction(ctx, id, taskID, "claim task", ports.GameAPI.ClaimTask)
}

// ClaimReady claims every task that is ready for claim. Failed claims are logged and
// skipped; the returned slice holds the tasks that were claimed.
func (s *TaskService) ClaimReady(ctx context.Context, id domain.AccountID) ([]domain.Task, error) {
	var claimed []domain.Task
	err := s.withClient(ctx, id, func(client ports.GameAPI, logger *zap.Logger) error {
		tasks, err := client.Tasks(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}

		for _, task := range tasks {
			if !task.Claimable() {
				continue
			}
			updated, err := client.ClaimTask(ctx, task.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("task claim failed", zap.String("task", task.ID), zap.Error(err))
				continue
			}
			if updated.Title == "" {
				updated.Title = task.Title
			}
			logger.Info("task claimed", zap.String("task", task.ID), zap.String("outcome", "ok"))
			claimed = append(claimed, updated)
		}
		return nil
	})
	return claimed, err
}

// ClaimDailyReward runs the daily-reward request outside the cycle.
func (s *TaskService) ClaimDailyReward(ctx context.Context, id domain.AccountID) (domain.DailyRewardOutcome, error) {
	var outcome domain.DailyRewardOutcome
	err := s.withClient(ctx, id, func(client ports.GameAPI, logger *zap.Logger) error {
		outcome = ClaimDailyReward(ctx, client, logger)
		return nil
	})
	return outcome, err
}

func (s *TaskService) taskAction(
	ctx context.Context,
	id domain.AccountID,
	taskID string,
	op string,
	action func(ports.GameAPI, context.Context, string) (domain.Task, error),
) (domain.Task, error) {
	if taskID == "" {
		return domain.Task{}, ErrTaskIDRequired
	}

	var task domain.Task
	err := s.withClient(ctx, id, func(client ports.GameAPI, logger *zap.Logger) error {
		var err error
		task, err = action(client, ctx, taskID)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, taskID, err)
		}
		logger.Info(op, zap.String("task", taskID), zap.String("status", string(task.Status)))
		return nil
	})
	return task, err
}

func (s *TaskService) withClient(ctx context.Context, id domain.AccountID, fn func(ports.GameAPI, *zap.Logger) error) (err error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	session := s.open(account)
	defer func() {
		err = errors.Join(err, session.Close())
	}()

	client, err := session.EnsureToken(ctx)
	if err != nil {
		return err
	}

	return fn(client, s.logger.With(zap.String("account", string(account.ID))))
}
