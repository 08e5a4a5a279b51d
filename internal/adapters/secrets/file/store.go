package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/blum-farm-cli/internal/adapters/secrets"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
)

const (
	storeDirMode    = 0o700
	secretFileMod   = 0o600
	tempFilePattern = ".secret-*.tmp"
)

// Store keeps one secret per file below root. Writes go through a temp file and a
// rename so a crash never leaves a truncated init data entry.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create file secret directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file secret %q: %w", key, err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if err := tempFile.Chmod(secretFileMod); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod file secret %q: %w", key, err)
	}
	if _, err := tempFile.WriteString(value); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write file secret %q: %w", key, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close file secret %q: %w", key, err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace file secret %q: %w", key, err)
	}
	cleanup = false

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file secret %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", fmt.Errorf("read file secret %q: %w", key, err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file secret %q: %w", key, err)
	}

	return nil
}

func (s *Store) pathForKey(key string) (string, error) {
	rel, err := secrets.RelativePath(key)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}
