package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// BuildNumber is the fourth component of a version number.
// NextBuild asks the build service to assign the next sequential number.
type BuildNumber int

// NextBuild is the placeholder build number.
const NextBuild BuildNumber = -1

// String renders the placeholder as NEXT.
func (b BuildNumber) String() string {
	if b == NextBuild {
		return "NEXT"
	}
	return strconv.Itoa(int(b))
}

// VersionNumber is a major.minor.patch.build package version.
type VersionNumber struct {
	Major int
	Minor int
	Patch int
	Build BuildNumber
}

// String formats the version as "{major}.{minor}.{patch}.{build}".
func (v VersionNumber) String() string {
	return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Patch, v.Build)
}

// Less orders versions by major, minor, patch and build.
func (v VersionNumber) Less(o VersionNumber) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	if v.Patch != o.Patch {
		return v.Patch < o.Patch
	}
	return v.Build < o.Build
}

// VersionBump names the version field to increment.
type VersionBump string

const (
	// BumpMajor increments the major version.
	BumpMajor VersionBump = "major"
	// BumpMinor increments the minor version.
	BumpMinor VersionBump = "minor"
	// BumpPatch increments the patch version.
	BumpPatch VersionBump = "patch"
)

// ParseVersionBump defaults to minor when s is empty.
func ParseVersionBump(s string) (VersionBump, error) {
	switch VersionBump(strings.ToLower(strings.TrimSpace(s))) {
	case "", BumpMinor:
		return BumpMinor, nil
	case BumpMajor:
		return BumpMajor, nil
	case BumpPatch:
		return BumpPatch, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidVersionBump, "parse version type"), "version_type", s)
	}
}

// VersionRecord is a package version as stored by the build service.
type VersionRecord struct {
	ID                  string   `json:"id"`
	PackageID           string   `json:"package_id"`
	Major               int      `json:"major"`
	Minor               int      `json:"minor"`
	Patch               int      `json:"patch"`
	Build               int      `json:"build"`
	Released            bool     `json:"released"`
	SubscriberVersionID string   `json:"subscriber_version_id"`
	Dependencies        []string `json:"dependencies,omitempty"`
}

// Number returns the record's version number.
func (r VersionRecord) Number() VersionNumber {
	return VersionNumber{
		Major: r.Major,
		Minor: r.Minor,
		Patch: r.Patch,
		Build: BuildNumber(r.Build),
	}
}

// NextVersion predicts the version for the next build of a package.
//
// With no prior version the bumped field starts at 1. A released version is
// bumped; an unreleased one is reused as is, so repeated builds before a
// release only advance the build number.
func NextVersion(latest *VersionRecord, bump VersionBump) VersionNumber {
	if latest == nil {
		next := VersionNumber{Build: NextBuild}
		switch bump {
		case BumpMajor:
			next.Major = 1
		case BumpMinor:
			next.Minor = 1
		case BumpPatch:
			next.Patch = 1
		}
		return next
	}

	next := VersionNumber{
		Major: latest.Major,
		Minor: latest.Minor,
		Patch: latest.Patch,
		Build: NextBuild,
	}
	if !latest.Released {
		return next
	}

	switch bump {
	case BumpMajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case BumpMinor:
		next.Minor++
		next.Patch = 0
	case BumpPatch:
		next.Patch++
	}
	return next
}
