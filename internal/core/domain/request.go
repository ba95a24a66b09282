package domain

// RequestStatus is the lifecycle state of a build request.
type RequestStatus string

const (
	// StatusQueued indicates the request is waiting to be processed.
	StatusQueued RequestStatus = "Queued"
	// StatusInProgress indicates the service is building the request.
	StatusInProgress RequestStatus = "InProgress"
	// StatusSuccess indicates the request produced a package version.
	StatusSuccess RequestStatus = "Success"
	// StatusError indicates the request failed.
	StatusError RequestStatus = "Error"
)

// IsTerminal reports whether no further transitions can happen.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// IsKnown reports whether s is one of the four request states.
func (s RequestStatus) IsKnown() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// HashTagPrefix prefixes the content hash in build request tags.
const HashTagPrefix = "hash:"

// HashTag returns the tag used to find requests built from the same content.
func HashTag(contentHash string) string {
	return HashTagPrefix + contentHash
}

// Entry names inside the version info archive attached to a build request.
const (
	VersionInfoPackageEntry    = "package.zip"
	VersionInfoDescriptorEntry = "package2-descriptor.json"
)

// SubmitRequest asks for a build of one package from a bundle.
type SubmitRequest struct {
	Package PackageConfig
	Bundle  []byte
	// Dependencies are subscriber version ids of the package's dependencies.
	// They are only recorded for the primary build.
	Dependencies []string
	// IsDependency marks a build made for a dependency of the primary package.
	IsDependency   bool
	SkipValidation bool
}

// BuildRequest is a build request as tracked by the build service.
type BuildRequest struct {
	ID        string        `json:"id"`
	PackageID string        `json:"package_id"`
	Tag       string        `json:"tag"`
	Status    RequestStatus `json:"status"`
	// VersionID is set once the request succeeded.
	VersionID string `json:"version_id,omitempty"`
}

// BuildRequestSpec is the payload used to create a build request.
type BuildRequestSpec struct {
	PackageID      string `json:"package_id"`
	Branch         string `json:"branch,omitempty"`
	SkipValidation bool   `json:"skip_validation"`
	Tag            string `json:"tag"`
	// VersionInfo is the base64 encoded zip holding the package and its descriptor.
	VersionInfo string `json:"version_info"`
}

// DescriptorDependency references one dependency of a package version.
type DescriptorDependency struct {
	SubscriberVersionID string `json:"subscriberPackageVersionId"`
}

// BuildDescriptor is the manifest submitted inside a build request.
// Dependency builds never carry Dependencies.
type BuildDescriptor struct {
	AncestorID    string                 `json:"ancestorId"`
	PackageID     string                 `json:"id"`
	Path          string                 `json:"path"`
	VersionName   string                 `json:"versionName"`
	VersionNumber string                 `json:"versionNumber"`
	Dependencies  []DescriptorDependency `json:"dependencies,omitempty"`
}

// BuildResult is what an orchestration run reports.
type BuildResult struct {
	PackageID           string   `json:"package_id" yaml:"package_id"`
	RequestID           string   `json:"request_id" yaml:"request_id"`
	VersionID           string   `json:"package2_version_id" yaml:"package2_version_id"`
	SubscriberVersionID string   `json:"subscriber_package_version_id" yaml:"subscriber_package_version_id"`
	VersionNumber       string   `json:"version_number" yaml:"version_number"`
	Dependencies        []string `json:"dependencies" yaml:"dependencies"`
}
