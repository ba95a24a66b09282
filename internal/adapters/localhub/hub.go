package localhub

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.BuildService       = (*Hub)(nil)
	_ ports.EnvironmentService = (*Hub)(nil)
)

// Entry names inside the version info archive.
const (
	PackageEntry    = domain.VersionInfoPackageEntry
	DescriptorEntry = domain.VersionInfoDescriptorEntry
)

// Messages recorded on rejected requests.
const (
	msgInvalidVersionInfo = "version info is not a valid archive"
	msgEmptyPackage       = "package contains no metadata"
)

// Hub is a build service kept in a single JSON file.
//
// Build requests advance one state per status read: a new request is Queued,
// the first read moves it to InProgress and the second completes it. A request
// whose package has no metadata besides the manifest fails on creation.
type Hub struct {
	path   string
	now    func() time.Time
	envTTL time.Duration

	mu    sync.Mutex
	state *state
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithEnvironmentTTL sets how long created environments live. Zero never expires.
func WithEnvironmentTTL(ttl time.Duration) Option {
	return func(h *Hub) { h.envTTL = ttl }
}

// Open loads the hub stored at path. A missing file is an empty hub.
func Open(path string, opts ...Option) (*Hub, error) {
	h := &Hub{
		path: filepath.Clean(path),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	s, err := load(h.path)
	if err != nil {
		return nil, err
	}
	h.state = s
	return h, nil
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}

// FindPackages returns the non-deprecated packages matching the identity.
func (h *Hub) FindPackages(_ context.Context, id domain.PackageIdentity) ([]domain.PackageRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []domain.PackageRecord
	for _, p := range h.state.Packages {
		if p.Matches(id) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreatePackage creates a package record.
func (h *Hub) CreatePackage(_ context.Context, spec domain.PackageSpec) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := domain.PackageRecord{
		ID:        newID("0Ho"),
		Name:      spec.Name,
		Type:      spec.Type,
		Namespace: spec.Namespace,
	}
	h.state.Packages = append(h.state.Packages, rec)
	if err := save(h.path, h.state); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// CreateBuildRequest records a build request. Requests with an unreadable
// version info or an empty package are created in the Error state.
func (h *Hub) CreateBuildRequest(_ context.Context, spec domain.BuildRequestSpec) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.findPackage(spec.PackageID) == nil {
		return "", zerr.With(zerr.Wrap(domain.ErrHubNotFound, "unknown package"), "package_id", spec.PackageID)
	}

	rec := &requestRecord{
		BuildRequest: domain.BuildRequest{
			ID:        newID("08c"),
			PackageID: spec.PackageID,
			Tag:       spec.Tag,
			Status:    domain.StatusQueued,
		},
		Branch:         spec.Branch,
		SkipValidation: spec.SkipValidation,
	}

	pkg, desc, err := decodeVersionInfo(spec.VersionInfo)
	switch {
	case err != nil:
		rec.Status = domain.StatusError
		rec.Errors = []string{msgInvalidVersionInfo + ": " + err.Error()}
	case desc.PackageID != spec.PackageID:
		rec.Status = domain.StatusError
		rec.Errors = []string{fmt.Sprintf("descriptor id %q does not match package %q", desc.PackageID, spec.PackageID)}
	default:
		rec.VersionNumber = desc.VersionNumber
		rec.VersionName = desc.VersionName
		for _, d := range desc.Dependencies {
			rec.Dependencies = append(rec.Dependencies, d.SubscriberVersionID)
		}
		if msgs := validatePackage(pkg); len(msgs) > 0 {
			rec.Status = domain.StatusError
			rec.Errors = msgs
		}
	}

	h.state.Requests = append(h.state.Requests, rec)
	if err := save(h.path, h.state); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// FindActiveRequests returns the package's requests with the tag that did not fail.
func (h *Hub) FindActiveRequests(_ context.Context, packageID, tag string) ([]domain.BuildRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []domain.BuildRequest
	for _, r := range h.state.Requests {
		if r.PackageID == packageID && r.Tag == tag && r.Status != domain.StatusError {
			out = append(out, r.BuildRequest)
		}
	}
	return out, nil
}

// GetBuildRequest returns the request after advancing it by one state.
func (h *Hub) GetBuildRequest(_ context.Context, requestID string) (domain.BuildRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := h.findRequest(requestID)
	if rec == nil {
		return domain.BuildRequest{}, zerr.With(zerr.Wrap(domain.ErrHubNotFound, "unknown build request"), "request_id", requestID)
	}

	rec.Reads++
	switch rec.Status {
	case domain.StatusQueued:
		rec.Status = domain.StatusInProgress
	case domain.StatusInProgress:
		if err := h.complete(rec); err != nil {
			rec.Status = domain.StatusError
			rec.Errors = append(rec.Errors, err.Error())
		}
	}

	if err := save(h.path, h.state); err != nil {
		return domain.BuildRequest{}, err
	}
	return rec.BuildRequest, nil
}

// GetBuildRequestErrors returns the error messages recorded for a request.
func (h *Hub) GetBuildRequestErrors(_ context.Context, requestID string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := h.findRequest(requestID)
	if rec == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrHubNotFound, "unknown build request"), "request_id", requestID)
	}
	return slices.Clone(rec.Errors), nil
}

// LatestVersion returns the highest version of the package, or nil when it has none.
func (h *Hub) LatestVersion(_ context.Context, packageID string) (*domain.VersionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var latest *domain.VersionRecord
	for i := range h.state.Versions {
		v := &h.state.Versions[i]
		if v.PackageID != packageID {
			continue
		}
		if latest == nil || latest.Number().Less(v.Number()) {
			latest = v
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// GetVersion returns a version by id.
func (h *Hub) GetVersion(_ context.Context, versionID string) (domain.VersionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, v := range h.state.Versions {
		if v.ID == versionID {
			return v, nil
		}
	}
	return domain.VersionRecord{}, zerr.With(zerr.Wrap(domain.ErrHubNotFound, "unknown version"), "version_id", versionID)
}

// CreateEnvironment provisions a helper environment.
func (h *Hub) CreateEnvironment(_ context.Context, name string) (domain.EnvironmentRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	env := domain.EnvironmentRecord{
		ID:        newID("00D"),
		Name:      name,
		CreatedAt: now,
	}
	if h.envTTL > 0 {
		env.ExpiresAt = now.Add(h.envTTL)
	}

	h.state.Environments = append(h.state.Environments, env)
	if err := save(h.path, h.state); err != nil {
		return domain.EnvironmentRecord{}, err
	}
	return env, nil
}

// ResolveNamespaced maps each dependency to a subscriber version id, from the
// installed table first and otherwise from the highest matching version of a
// package in the same namespace.
func (h *Hub) ResolveNamespaced(_ context.Context, envID string, deps []domain.NamespacedDependency) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	env := h.findEnvironment(envID)
	if env == nil || env.State(h.now()) != domain.EnvironmentLive {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvironmentUnavailable, "environment is not live"), "environment_id", envID)
	}

	ids := make([]string, len(deps))
	for i, d := range deps {
		id := h.resolve(d)
		if id == "" {
			err := zerr.With(zerr.Wrap(domain.ErrNamespaceResolutionFailed, "no installed version"), "namespace", d.Namespace)
			return nil, zerr.With(err, "version", d.Version)
		}
		ids[i] = id
	}
	return ids, nil
}

func (h *Hub) resolve(d domain.NamespacedDependency) string {
	if id, ok := h.state.Installed[d.Namespace+"@"+d.Version]; ok {
		return id
	}

	want := parseNumbers(d.Version)
	var best *domain.VersionRecord
	for i := range h.state.Versions {
		v := &h.state.Versions[i]
		pkg := h.findPackage(v.PackageID)
		if pkg == nil || pkg.Namespace != d.Namespace || !matchesPrefix(v.Number(), want) {
			continue
		}
		if best == nil || best.Number().Less(v.Number()) {
			best = v
		}
	}
	if best == nil {
		return ""
	}
	return best.SubscriberVersionID
}

// complete turns an in-progress request into a new version.
func (h *Hub) complete(rec *requestRecord) error {
	nums := parseNumbers(rec.VersionNumber)
	if len(nums) < 3 {
		return fmt.Errorf("invalid version number %q", rec.VersionNumber)
	}

	build := 0
	for _, v := range h.state.Versions {
		if v.PackageID == rec.PackageID && v.Major == nums[0] && v.Minor == nums[1] && v.Patch == nums[2] {
			build = max(build, v.Build)
		}
	}

	v := domain.VersionRecord{
		ID:                  newID("05i"),
		PackageID:           rec.PackageID,
		Major:               nums[0],
		Minor:               nums[1],
		Patch:               nums[2],
		Build:               build + 1,
		SubscriberVersionID: newID("04t"),
		Dependencies:        rec.Dependencies,
	}
	h.state.Versions = append(h.state.Versions, v)

	rec.Status = domain.StatusSuccess
	rec.VersionID = v.ID
	return nil
}

func (h *Hub) findPackage(id string) *domain.PackageRecord {
	for i := range h.state.Packages {
		if h.state.Packages[i].ID == id {
			return &h.state.Packages[i]
		}
	}
	return nil
}

func (h *Hub) findRequest(id string) *requestRecord {
	for _, r := range h.state.Requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (h *Hub) findEnvironment(id string) *domain.EnvironmentRecord {
	for i := range h.state.Environments {
		if h.state.Environments[i].ID == id {
			return &h.state.Environments[i]
		}
	}
	return nil
}

// parseNumbers reads the leading numeric components of a dotted version.
func parseNumbers(version string) []int {
	var nums []int
	for part := range strings.SplitSeq(version, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		nums = append(nums, n)
	}
	return nums
}

func matchesPrefix(v domain.VersionNumber, want []int) bool {
	have := []int{v.Major, v.Minor, v.Patch, int(v.Build)}
	if len(want) == 0 || len(want) > len(have) {
		return false
	}
	return slices.Equal(have[:len(want)], want)
}

func decodeVersionInfo(encoded string) ([]byte, domain.BuildDescriptor, error) {
	var desc domain.BuildDescriptor

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, desc, err
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, desc, err
	}

	pkg, err := readEntry(zr, PackageEntry)
	if err != nil {
		return nil, desc, err
	}
	descData, err := readEntry(zr, DescriptorEntry)
	if err != nil {
		return nil, desc, err
	}
	if err := json.Unmarshal(descData, &desc); err != nil {
		return nil, desc, err
	}
	return pkg, desc, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer
	return io.ReadAll(f)
}

// validatePackage returns the reasons the package cannot be built.
func validatePackage(pkg []byte) []string {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return []string{"package is not a valid archive: " + err.Error()}
	}

	var msgs []string
	hasManifest := false
	metadata := 0
	for _, f := range zr.File {
		switch {
		case f.Name == "package.xml":
			hasManifest = true
		case !strings.HasSuffix(f.Name, "/"):
			metadata++
		}
	}
	if !hasManifest {
		msgs = append(msgs, "package.xml is missing")
	}
	if metadata == 0 {
		msgs = append(msgs, msgEmptyPackage)
	}
	return msgs
}
