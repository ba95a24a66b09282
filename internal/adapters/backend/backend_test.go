package backend_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/adapters/backend"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/adapters/hub"
	"go.trai.ch/cask/internal/adapters/localhub"
	"go.trai.ch/cask/internal/core/domain"
)

func TestOpen_HTTP(t *testing.T) {
	svc, err := backend.Open(&config.Settings{Backend: config.BackendHTTP, HubURL: "http://hub.invalid"})
	require.NoError(t, err)
	assert.IsType(t, &hub.Client{}, svc)
}

func TestOpen_Local(t *testing.T) {
	svc, err := backend.Open(&config.Settings{
		Backend:        config.BackendLocal,
		LocalStatePath: filepath.Join(t.TempDir(), "hub.json"),
	})
	require.NoError(t, err)
	assert.IsType(t, &localhub.Hub{}, svc)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := backend.Open(&config.Settings{Backend: "ftp"})
	require.ErrorIs(t, err, domain.ErrSettingsLoadFailed)
}
