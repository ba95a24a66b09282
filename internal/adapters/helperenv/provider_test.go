package helperenv_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/adapters/helperenv"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newStore(t *testing.T) *helperenv.Store {
	t.Helper()
	store, err := helperenv.NewStore(filepath.Join(t.TempDir(), "environment.json"))
	require.NoError(t, err)
	return store
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func TestProvider_Absent_CreatesAndStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := newStore(t)

	created := domain.EnvironmentRecord{ID: "00D1", ExpiresAt: now.Add(time.Hour)}
	service.EXPECT().CreateEnvironment(gomock.Any(), "helper").Return(created, nil).Times(1)

	p := helperenv.NewProvider(service, store, quietLogger(ctrl), "helper", helperenv.WithClock(clock))

	env, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00D1", env.ID)
	assert.Equal(t, "helper", env.Name)

	again, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, env, again)

	stored, err := store.Get("helper")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "00D1", stored.ID)
}

func TestProvider_Live_Reuses(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := newStore(t)
	require.NoError(t, store.Put(domain.EnvironmentRecord{ID: "00DLIVE", Name: "helper", ExpiresAt: now.Add(time.Minute)}))

	p := helperenv.NewProvider(service, store, quietLogger(ctrl), "helper", helperenv.WithClock(clock))

	env, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00DLIVE", env.ID)
}

func TestProvider_Expired_Recreates(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := newStore(t)
	require.NoError(t, store.Put(domain.EnvironmentRecord{ID: "00DOLD", Name: "helper", ExpiresAt: now.Add(-time.Minute)}))

	service.EXPECT().CreateEnvironment(gomock.Any(), "helper").
		Return(domain.EnvironmentRecord{ID: "00DNEW", Name: "helper"}, nil)

	p := helperenv.NewProvider(service, store, quietLogger(ctrl), "helper", helperenv.WithClock(clock))

	env, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00DNEW", env.ID)
	assert.Equal(t, now, env.CreatedAt)

	stored, err := store.Get("helper")
	require.NoError(t, err)
	assert.Equal(t, "00DNEW", stored.ID)
}

func TestProvider_Pinned(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := mocks.NewMockLeaseStore(ctrl)

	p := helperenv.NewProvider(service, store, quietLogger(ctrl), "helper", helperenv.WithPinnedID("00DPIN"))

	env, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.EnvironmentRecord{ID: "00DPIN", Name: "helper"}, env)
}

func TestProvider_CreateFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := mocks.NewMockLeaseStore(ctrl)

	store.EXPECT().Get("helper").Return(nil, nil)
	service.EXPECT().CreateEnvironment(gomock.Any(), "helper").Return(domain.EnvironmentRecord{}, errors.New("quota exceeded"))

	p := helperenv.NewProvider(service, store, quietLogger(ctrl), "helper", helperenv.WithClock(clock))

	_, err := p.Acquire(context.Background())
	require.ErrorIs(t, err, domain.ErrEnvironmentUnavailable)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestProvider_LeaseErrorsAreNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockEnvironmentService(ctrl)
	store := mocks.NewMockLeaseStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	store.EXPECT().Get("helper").Return(nil, domain.ErrStoreReadFailed)
	store.EXPECT().Put(gomock.Any()).Return(domain.ErrStoreWriteFailed)
	service.EXPECT().CreateEnvironment(gomock.Any(), "helper").Return(domain.EnvironmentRecord{ID: "00D1"}, nil)
	log.EXPECT().Warn(gomock.Any()).Times(2)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	p := helperenv.NewProvider(service, store, log, "helper", helperenv.WithClock(clock))

	env, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00D1", env.ID)
}
