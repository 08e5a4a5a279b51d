package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/blum-farm-cli/internal/adapters/secrets"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
)

// DefaultPrefix namespaces every entry inside the password store.
const DefaultPrefix = "bfarm"

var ErrUnavailable = errors.New("pass command unavailable")

const notInStoreMarker = "is not in the password store"

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type Store struct {
	run    runFunc
	prefix string
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{run: runPassCommand, prefix: strings.Trim(prefix, "/")}
}

func (s *Store) entry(key string) (string, error) {
	rel, err := secrets.RelativePath(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return rel, nil
	}
	return s.prefix + "/" + rel, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := s.entry(key)
	if err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, strings.TrimRight(value, "\r\n")+"\n", "insert", "-m", "-f", entry)
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entry, err := s.entry(key)
	if err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", entry)
	if err != nil {
		if strings.Contains(stderr, notInStoreMarker) {
			return "", fmt.Errorf("pass get %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", formatError("get", key, err, stderr)
	}

	stdout = strings.TrimSuffix(stdout, "\n")
	stdout = strings.TrimSuffix(stdout, "\r")

	return stdout, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := s.entry(key)
	if err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", entry)
	if err != nil {
		if strings.Contains(stderr, notInStoreMarker) {
			return nil
		}
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
