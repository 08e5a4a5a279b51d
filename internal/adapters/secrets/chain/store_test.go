package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/blum-farm-cli/internal/domain"
	portmocks "github.com/bnema/blum-farm-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "blum://main/init_data"

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Get(mock.Anything, testKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", errors.New("pass unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReturnsSecretNotFoundWhenNeitherBackendHasIt(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", fmt.Errorf("pass get: %w", domain.ErrSecretNotFound)).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("", fmt.Errorf("file secret: %w", domain.ErrSecretNotFound)).Once()

	_, err := store.Get(context.Background(), testKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.NotContains(t, err.Error(), "primary backend")
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("", errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), testKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Put(mock.Anything, testKey, "init").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, testKey, "init").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), testKey, "init"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Put(mock.Anything, testKey, "init").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), testKey, "init"))
}

func TestStoreDeleteReachesBothBackends(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), testKey))
}

func TestStoreDeleteToleratesPrimaryFailure(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), testKey))
}

func TestStoreDeleteReportsFallbackFailure(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("read-only filesystem")).Once()

	err := store.Delete(context.Background(), testKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "read-only filesystem")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback, nil)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), testKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked(nil, portmocks.NewMockSecretStore(t), nil)
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil, nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}
