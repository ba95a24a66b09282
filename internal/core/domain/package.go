package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// PackageType is the container kind of a package in the build service.
type PackageType string

const (
	// PackageTypeManaged is a namespaced, upgradeable package.
	PackageTypeManaged PackageType = "Managed"
	// PackageTypeUnlocked is a package whose contents can be changed after install.
	PackageTypeUnlocked PackageType = "Unlocked"
)

// ParsePackageType accepts the type name case-insensitively.
func ParsePackageType(s string) (PackageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "managed":
		return PackageTypeManaged, nil
	case "unlocked":
		return PackageTypeUnlocked, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidPackageType, "parse package type"), "package_type", s)
	}
}

// PackageIdentity is the natural key of a package in the build service.
// An empty Namespace matches only packages without a namespace.
type PackageIdentity struct {
	Name      string
	Type      PackageType
	Namespace string
}

// PackageConfig describes a package to build and how to version it.
type PackageConfig struct {
	PackageIdentity

	Description string
	Branch      string
	VersionName string
	VersionBump VersionBump
}

// PackageSpec is the payload used to create a package record.
type PackageSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
}

// PackageRecord is a package as stored by the build service.
type PackageRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Namespace  string `json:"namespace,omitempty"`
	Deprecated bool   `json:"deprecated,omitempty"`
}

// Matches reports whether the record is a live package for the identity.
func (r PackageRecord) Matches(id PackageIdentity) bool {
	return !r.Deprecated &&
		r.Name == id.Name &&
		r.Type == string(id.Type) &&
		r.Namespace == id.Namespace
}
