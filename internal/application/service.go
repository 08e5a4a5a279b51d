package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
)

var ErrInitDataRequired = errors.New("init data is required for a new account")

type AccountService struct {
	repo  ports.AccountRepository
	store ports.SecretStore
}

func NewAccountService(repo ports.AccountRepository, store ports.SecretStore) *AccountService {
	return &AccountService{
		repo:  repo,
		store: store,
	}
}

// AddAccount creates or updates an account. New init data is stored first and rolled
// back if the account cannot be saved; a previous secret under another key is removed
// once the save succeeded.
func (s *AccountService) AddAccount(ctx context.Context, cmd AddAccountCommand) error {
	account, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("get account by id: %w", err)
		}
		account = domain.Account{ID: cmd.ID}
	}
	originalAccount := account

	cmd.apply(&account)
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validate account: %w", err)
	}

	initData := strings.TrimSpace(cmd.InitData)
	if initData == "" {
		if account.Auth.SecretRef == "" {
			return ErrInitDataRequired
		}
		if err := s.repo.Save(ctx, account); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		return nil
	}

	previousSecretRef := account.Auth.SecretRef
	secretKey := domain.InitDataSecretRef(account.ID)

	if err := s.store.Put(ctx, secretKey, initData); err != nil {
		return fmt.Errorf("store init data: %w", err)
	}
	account.Auth.SecretRef = secretKey

	if err := s.repo.Save(ctx, account); err != nil {
		if previousSecretRef == secretKey {
			return fmt.Errorf("save account: %w", err)
		}
		if rollbackErr := s.store.Delete(ctx, secretKey); rollbackErr != nil {
			return fmt.Errorf("save account and rollback stored init data: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save account: %w", err)
	}

	if previousSecretRef == "" || previousSecretRef == secretKey {
		return nil
	}
	if err := s.store.Delete(ctx, previousSecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		var rollbackErr error
		if restoreErr := s.repo.Save(ctx, originalAccount); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if newSecretDeleteErr := s.store.Delete(ctx, secretKey); newSecretDeleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, newSecretDeleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous init data and rollback account update: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous init data: %w", err)
	}

	return nil
}

// RemoveAccount deletes the account and its stored init data. The account is restored
// when the secret cannot be deleted.
func (s *AccountService) RemoveAccount(ctx context.Context, id domain.AccountID) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if account.Auth.SecretRef == "" {
		return nil
	}
	if err := s.store.Delete(ctx, account.Auth.SecretRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		if restoreErr := s.repo.Save(ctx, account); restoreErr != nil {
			return fmt.Errorf("delete init data and restore account: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete init data: %w", err)
	}

	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ImportProfiles adds every profile, deriving ids from names. It keeps going after a
// failed entry and reports every failure together.
func (s *AccountService) ImportProfiles(ctx context.Context, profiles []domain.Profile) (ImportResult, error) {
	var (
		result ImportResult
		errs   []error
	)

	for _, profile := range profiles {
		id := domain.AccountIDFromName(profile.Name)
		if id == "" {
			errs = append(errs, fmt.Errorf("profile %q: name does not yield an account id", profile.Name))
			result.Failed++
			continue
		}

		err := s.AddAccount(ctx, AddAccountCommand{
			ID:       id,
			Name:     profile.Name,
			RefID:    profile.RefID,
			Proxy:    profile.Proxy,
			InitData: profile.Query,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", profile.Name, err))
			result.Failed++
			continue
		}
		result.Imported = append(result.Imported, id)
	}

	return result, errors.Join(errs...)
}
