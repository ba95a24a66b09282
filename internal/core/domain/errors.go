package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrAmbiguousIdentity is returned when more than one non-deprecated package matches a package identity.
	ErrAmbiguousIdentity = zerr.New("found more than one package with the same name, namespace and package type")

	// ErrUnclassifiableDependency is returned when a dependency declaration matches none of the known shapes.
	ErrUnclassifiableDependency = zerr.New("unable to classify dependency")

	// ErrBuildFailed is returned when the build service reports a build request in the Error state.
	ErrBuildFailed = zerr.New("package version build failed")

	// ErrMalformedContent is returned when a source directory cannot be bundled.
	ErrMalformedContent = zerr.New("failed to bundle package source")

	// ErrPollTimeout is returned when a build request does not reach a terminal state in time.
	ErrPollTimeout = zerr.New("timed out waiting for build request")

	// ErrUnknownStatus is returned when the build service reports a status the poll engine does not know.
	ErrUnknownStatus = zerr.New("unknown build request status")

	// ErrInvalidVersionBump is returned when a version bump is not one of major, minor or patch.
	ErrInvalidVersionBump = zerr.New("invalid version type, expected 'major', 'minor' or 'patch'")

	// ErrInvalidPackageType is returned when a package type is not Managed or Unlocked.
	ErrInvalidPackageType = zerr.New("invalid package type, expected 'Managed' or 'Unlocked'")

	// ErrMissingPackageName is returned when the project does not name its package.
	ErrMissingPackageName = zerr.New("missing package name")

	// ErrConfigReadFailed is returned when the project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the project file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrSettingsLoadFailed is returned when runtime settings cannot be loaded.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")

	// ErrHubRequestFailed is returned when a call to the build service fails.
	ErrHubRequestFailed = zerr.New("build service request failed")

	// ErrHubNotFound is returned when the build service has no record for the requested id.
	ErrHubNotFound = zerr.New("record not found in build service")

	// ErrHubResponseInvalid is returned when a build service response cannot be decoded.
	ErrHubResponseInvalid = zerr.New("failed to decode build service response")

	// ErrSourceFetchFailed is returned when a source dependency cannot be fetched.
	ErrSourceFetchFailed = zerr.New("failed to fetch dependency source")

	// ErrEnvironmentUnavailable is returned when no helper environment can be acquired.
	ErrEnvironmentUnavailable = zerr.New("helper environment unavailable")

	// ErrNamespaceResolutionFailed is returned when namespaced dependencies cannot be resolved to version ids.
	ErrNamespaceResolutionFailed = zerr.New("failed to resolve namespaced dependencies")

	// ErrStoreReadFailed is returned when a local state file cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read state file")

	// ErrStoreWriteFailed is returned when a local state file cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write state file")

	// ErrBuildExecutionFailed is returned when the orchestration run fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
)

// BuildFailure carries the messages the build service attached to a failed request.
type BuildFailure struct {
	RequestID string
	Messages  []string
}

// Error joins all service-reported messages, one per line.
func (f *BuildFailure) Error() string {
	if len(f.Messages) == 0 {
		return ErrBuildFailed.Error()
	}
	return strings.Join(f.Messages, "\n")
}

// Unwrap lets errors.Is match ErrBuildFailed.
func (f *BuildFailure) Unwrap() error {
	return ErrBuildFailed
}
