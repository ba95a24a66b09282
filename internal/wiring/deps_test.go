package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/core/domain"
	_ "go.trai.ch/cask/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid has a limitation/bug where it infers the dependency ID
	// from the package name of the interface used in Dep[T].
	// Since we use `ports.BuildService`, `ports.Logger`, etc., it expects a dependency named "ports".
	// This makes it incompatible with our architecture where multiple distinct nodes
	// implement interfaces from the same `ports` package.
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

func TestExecuteForComponents(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CASK_HUB_URL", "")

	ctx := config.ContextWithOverrides(context.Background(), config.Overrides{WorkDir: dir, Local: true})
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	require.NoError(t, err)
	require.NotNil(t, components.App)
	assert.NotNil(t, components.Logger)
	assert.Equal(t, dir, components.Dir)
	assert.Equal(t, domain.DefaultConfigFile, components.ConfigFile)
}

func TestExecuteForComponents_InvalidSettings(t *testing.T) {
	t.Setenv("CASK_HUB_URL", "")

	ctx := config.ContextWithOverrides(context.Background(), config.Overrides{WorkDir: t.TempDir()})
	_, _, err := graft.ExecuteFor[*app.Components](ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub_url")
}
