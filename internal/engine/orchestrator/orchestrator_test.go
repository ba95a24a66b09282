package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/adapters/bundle"
	"go.trai.ch/cask/internal/adapters/fs"
	"go.trai.ch/cask/internal/adapters/helperenv"
	"go.trai.ch/cask/internal/adapters/localhub"
	"go.trai.ch/cask/internal/adapters/source"
	"go.trai.ch/cask/internal/adapters/telemetry"
	"go.trai.ch/cask/internal/adapters/telemetry/progrock"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.trai.ch/cask/internal/engine/orchestrator"
	"go.trai.ch/cask/internal/engine/poller"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/submitter"
	"go.trai.ch/cask/internal/engine/versioning"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

// newProject lays out a project with one class in force-app and one
// pre-dependency folder.
func newProject(t *testing.T) *domain.Project {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "force-app/classes/Widget.cls", "public class Widget {}")
	writeFile(t, root, "unpackaged/pre/config/objects/Setting__c.object", "<CustomObject/>")
	writeFile(t, root, "unpackaged/post/layouts/Widget.layout", "<Layout/>")

	return &domain.Project{
		Root: root,
		Package: domain.PackageConfig{
			PackageIdentity: domain.PackageIdentity{Name: "Widgets", Type: domain.PackageTypeManaged, Namespace: "wdgt"},
			Description:     "Widget library",
			VersionName:     "Release",
			VersionBump:     domain.BumpMinor,
		},
		Repo:            domain.Repo{Owner: "acme", Name: "widgets"},
		SourcePath:      "force-app",
		PreDependencies: domain.DefaultPreDependencies,
		Dependencies: []domain.Dependency{
			domain.ResolvedDependency{VersionID: "04tBASE"},
			domain.SourceDependency{LocalPath: "unpackaged/post/layouts"},
		},
	}
}

type stack struct {
	hub          *localhub.Hub
	orchestrator *orchestrator.Orchestrator
}

func newStack(t *testing.T, ctrl *gomock.Controller, hubPath string, tel ports.Telemetry) stack {
	t.Helper()
	log := quietLogger(ctrl)

	hub, err := localhub.Open(hubPath)
	require.NoError(t, err)
	leases, err := helperenv.NewStore(filepath.Join(filepath.Dir(hubPath), "leases.json"))
	require.NoError(t, err)

	allocator := versioning.New(hub, log)
	o := orchestrator.New(orchestrator.Components{
		Resolver:  resolver.New(helperenv.NewProvider(hub, leases, log, "cask-helper"), hub, log),
		Submitter: submitter.New(hub, fs.NewHasher(), allocator, log),
		Poller:    poller.New(hub, log),
		Bundler:   bundle.New(fs.NewWalker(), log),
		Fetcher:   source.New("", "", "", log),
		Service:   hub,
		Telemetry: tel,
		Logger:    log,
	}, poller.Options{Interval: time.Second, MaxInterval: time.Second, Timeout: time.Minute})
	return stack{hub: hub, orchestrator: o}
}

func TestOrchestrator_Run(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		s := newStack(t, ctrl, filepath.Join(t.TempDir(), "hub.json"), telemetry.NewNoOp())

		result, err := s.orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)

		assert.NotEmpty(t, result.PackageID)
		assert.NotEmpty(t, result.RequestID)
		assert.NotEmpty(t, result.VersionID)
		assert.NotEmpty(t, result.SubscriberVersionID)
		assert.Equal(t, "0.1.0.1", result.VersionNumber)

		// The pre-dependency is built before the primary package and the
		// post-deployment folder is never built.
		require.Len(t, result.Dependencies, 2)
		assert.Equal(t, "04tBASE", result.Dependencies[0])

		pre, err := s.hub.FindPackages(context.Background(), domain.PackageIdentity{
			Name:      "acme/widgets unpackaged/pre/config",
			Type:      domain.PackageTypeUnlocked,
			Namespace: "wdgt",
		})
		require.NoError(t, err)
		require.Len(t, pre, 1)
		latest, err := s.hub.LatestVersion(context.Background(), pre[0].ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, latest.SubscriberVersionID, result.Dependencies[1])
		assert.Empty(t, latest.Dependencies)

		post, err := s.hub.FindPackages(context.Background(), domain.PackageIdentity{
			Name:      "acme/widgets unpackaged/post/layouts",
			Type:      domain.PackageTypeUnlocked,
			Namespace: "wdgt",
		})
		require.NoError(t, err)
		assert.Empty(t, post)
	})
}

func TestOrchestrator_Run_ReusesIdenticalBuilds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		hubPath := filepath.Join(t.TempDir(), "hub.json")

		first, err := newStack(t, ctrl, hubPath, telemetry.NewNoOp()).
			orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)

		tel := mocks.NewMockTelemetry(ctrl)
		vertex := mocks.NewMockVertex(ctrl)
		tel.EXPECT().Record(gomock.Any(), "build acme/widgets unpackaged/pre/config").
			DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) { return ctx, vertex })
		tel.EXPECT().Record(gomock.Any(), "build Widgets").
			DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) { return ctx, vertex })
		vertex.EXPECT().Cached().Times(2)
		vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
		vertex.EXPECT().Complete(nil).Times(2)

		second, err := newStack(t, ctrl, hubPath, tel).
			orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestOrchestrator_Run_ReportsReusedBuildsAsCached(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		hubPath := filepath.Join(t.TempDir(), "hub.json")

		_, err := newStack(t, ctrl, hubPath, telemetry.NewNoOp()).
			orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)

		var reported []string
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Info(gomock.Any()).Do(func(msg string) { reported = append(reported, msg) }).AnyTimes()
		recorder := progrock.New(log)

		_, err = newStack(t, ctrl, hubPath, recorder).
			orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)
		require.NoError(t, recorder.Close())

		assert.Contains(t, reported, "build acme/widgets unpackaged/pre/config: cached")
		assert.Contains(t, reported, "build Widgets: cached")
	})
}

func TestOrchestrator_Run_NewContentBuildsAgain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		s := newStack(t, ctrl, filepath.Join(t.TempDir(), "hub.json"), telemetry.NewNoOp())

		first, err := s.orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.NoError(t, err)

		writeFile(t, project.Root, "force-app/classes/Gadget.cls", "public class Gadget {}")
		second, err := s.orchestrator.Run(context.Background(), project, orchestrator.RunOptions{SkipValidation: true})
		require.NoError(t, err)

		assert.Equal(t, first.PackageID, second.PackageID)
		assert.NotEqual(t, first.RequestID, second.RequestID)
		// The first version was never released, so only the build number moves.
		assert.Equal(t, "0.1.0.2", second.VersionNumber)
		assert.Equal(t, first.Dependencies, second.Dependencies)
	})
}

func TestOrchestrator_Run_DependencyFailureStopsRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		// A folder without metadata is rejected by the build service.
		require.NoError(t, os.MkdirAll(filepath.Join(project.Root, "unpackaged/pre/empty"), domain.DirPerm))
		s := newStack(t, ctrl, filepath.Join(t.TempDir(), "hub.json"), telemetry.NewNoOp())

		_, err := s.orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.Error(t, err)
		require.ErrorIs(t, err, domain.ErrBuildFailed)

		var failure *domain.BuildFailure
		require.ErrorAs(t, err, &failure)
		assert.NotEmpty(t, failure.Messages)

		primary, err := s.hub.FindPackages(context.Background(), project.Package.PackageIdentity)
		require.NoError(t, err)
		assert.Empty(t, primary)
	})
}

func TestOrchestrator_Run_MissingSource(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		project := newProject(t)
		project.Dependencies = []domain.Dependency{domain.SourceDependency{LocalPath: "unpackaged/missing"}}
		s := newStack(t, ctrl, filepath.Join(t.TempDir(), "hub.json"), telemetry.NewNoOp())

		_, err := s.orchestrator.Run(context.Background(), project, orchestrator.RunOptions{})
		require.ErrorIs(t, err, domain.ErrSourceFetchFailed)
	})
}

func TestOrchestrator_Run_MissingPackageName(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := orchestrator.New(orchestrator.Components{Logger: quietLogger(ctrl)}, poller.Options{})

	_, err := o.Run(context.Background(), &domain.Project{Root: t.TempDir()}, orchestrator.RunOptions{})
	require.ErrorIs(t, err, domain.ErrMissingPackageName)
}

func TestOrchestrator_Run_OverridesVersioning(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := quietLogger(ctrl)
	service := mocks.NewMockBuildService(ctrl)
	bundler := mocks.NewMockBundler(ctrl)
	hasher := mocks.NewMockHasher(ctrl)

	project := &domain.Project{
		Root: t.TempDir(),
		Package: domain.PackageConfig{
			PackageIdentity: domain.PackageIdentity{Name: "Widgets", Type: domain.PackageTypeUnlocked},
			VersionBump:     domain.BumpMinor,
		},
		SourcePath: "src",
	}

	bundler.EXPECT().Bundle(gomock.Any(), filepath.Join(project.Root, "src"), "Widgets").Return([]byte("zip"), nil)
	hasher.EXPECT().ContentHash([]byte("zip")).Return("abc")
	service.EXPECT().FindPackages(gomock.Any(), project.Package.PackageIdentity).
		Return([]domain.PackageRecord{{ID: "0Ho1", Name: "Widgets", Type: "Unlocked"}}, nil)
	service.EXPECT().FindActiveRequests(gomock.Any(), "0Ho1", "hash:abc").Return(nil, nil)
	service.EXPECT().LatestVersion(gomock.Any(), "0Ho1").
		Return(&domain.VersionRecord{Major: 1, Minor: 4, Patch: 2, Build: 3, Released: true}, nil)
	service.EXPECT().CreateBuildRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, spec domain.BuildRequestSpec) (string, error) {
			assert.True(t, spec.SkipValidation)
			return "08c1", nil
		})
	service.EXPECT().GetBuildRequest(gomock.Any(), "08c1").
		Return(domain.BuildRequest{ID: "08c1", Status: domain.StatusSuccess, VersionID: "05i1"}, nil)
	service.EXPECT().GetVersion(gomock.Any(), "05i1").
		Return(domain.VersionRecord{ID: "05i1", Major: 2, SubscriberVersionID: "04t1", Build: 1}, nil)

	o := orchestrator.New(orchestrator.Components{
		Resolver:  resolver.New(mocks.NewMockEnvironmentProvider(ctrl), mocks.NewMockEnvironmentService(ctrl), log),
		Submitter: submitter.New(service, hasher, versioning.New(service, log), log),
		Poller:    poller.New(service, log),
		Bundler:   bundler,
		Fetcher:   mocks.NewMockSourceFetcher(ctrl),
		Service:   service,
		Telemetry: telemetry.NewNoOp(),
		Logger:    log,
	}, poller.Options{})

	result, err := o.Run(context.Background(), project, orchestrator.RunOptions{
		VersionBump:    domain.BumpMajor,
		VersionName:    "Spring",
		SkipValidation: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0.1", result.VersionNumber)
	assert.Equal(t, "04t1", result.SubscriberVersionID)
	assert.Equal(t, []string{}, result.Dependencies)
}

func TestOrchestrator_Run_BuildFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := quietLogger(ctrl)
	service := mocks.NewMockBuildService(ctrl)
	bundler := mocks.NewMockBundler(ctrl)
	hasher := mocks.NewMockHasher(ctrl)

	project := &domain.Project{
		Root: t.TempDir(),
		Package: domain.PackageConfig{
			PackageIdentity: domain.PackageIdentity{Name: "Widgets", Type: domain.PackageTypeUnlocked},
			VersionBump:     domain.BumpPatch,
		},
		SourcePath: "src",
	}

	bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), "Widgets").Return([]byte("zip"), nil)
	hasher.EXPECT().ContentHash(gomock.Any()).Return("abc")
	service.EXPECT().FindPackages(gomock.Any(), gomock.Any()).Return(nil, nil)
	service.EXPECT().CreatePackage(gomock.Any(), gomock.Any()).Return("0Ho1", nil)
	service.EXPECT().FindActiveRequests(gomock.Any(), "0Ho1", "hash:abc").Return(nil, nil)
	service.EXPECT().LatestVersion(gomock.Any(), "0Ho1").Return(nil, nil)
	service.EXPECT().CreateBuildRequest(gomock.Any(), gomock.Any()).Return("08c1", nil)
	service.EXPECT().GetBuildRequest(gomock.Any(), "08c1").
		Return(domain.BuildRequest{ID: "08c1", Status: domain.StatusError}, nil)
	service.EXPECT().GetBuildRequestErrors(gomock.Any(), "08c1").Return([]string{"first", "second"}, nil)

	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	tel.EXPECT().Record(gomock.Any(), "build Widgets").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) { return ctx, vertex })
	vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).Do(func(err error) {
		assert.True(t, errors.Is(err, domain.ErrBuildFailed))
	})

	o := orchestrator.New(orchestrator.Components{
		Resolver:  resolver.New(mocks.NewMockEnvironmentProvider(ctrl), mocks.NewMockEnvironmentService(ctrl), log),
		Submitter: submitter.New(service, hasher, versioning.New(service, log), log),
		Poller:    poller.New(service, log),
		Bundler:   bundler,
		Fetcher:   mocks.NewMockSourceFetcher(ctrl),
		Service:   service,
		Telemetry: tel,
		Logger:    log,
	}, poller.Options{})

	_, err := o.Run(context.Background(), project, orchestrator.RunOptions{})
	var failure *domain.BuildFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, []string{"first", "second"}, failure.Messages)
}

func TestOrchestrator_Run_FetchFailureWithoutCleanup(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := quietLogger(ctrl)
	fetcher := mocks.NewMockSourceFetcher(ctrl)

	project := &domain.Project{
		Root: t.TempDir(),
		Package: domain.PackageConfig{
			PackageIdentity: domain.PackageIdentity{Name: "Widgets", Type: domain.PackageTypeUnlocked},
		},
		SourcePath: "src",
		Dependencies: []domain.Dependency{
			domain.SourceDependency{RepoOwner: "acme", RepoName: "core", Subfolder: "unpackaged/pre/objects"},
		},
	}

	// A failing fetch may return a nil cleanup func.
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return("", nil, zerr.Wrap(domain.ErrSourceFetchFailed, "subfolder not found"))

	o := orchestrator.New(orchestrator.Components{
		Resolver:  resolver.New(mocks.NewMockEnvironmentProvider(ctrl), mocks.NewMockEnvironmentService(ctrl), log),
		Bundler:   mocks.NewMockBundler(ctrl),
		Fetcher:   fetcher,
		Service:   mocks.NewMockBuildService(ctrl),
		Telemetry: telemetry.NewNoOp(),
		Logger:    log,
	}, poller.Options{})

	require.NotPanics(t, func() {
		_, err := o.Run(context.Background(), project, orchestrator.RunOptions{})
		require.ErrorIs(t, err, domain.ErrSourceFetchFailed)
	})
}
