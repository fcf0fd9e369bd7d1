package dpkggraph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers branch on these with errors.Is.
var (
	// ErrPackageNotInstalled is returned when a dependency resolves to a
	// target package that the ingestion driver has no PackageNode for —
	// the package database claims it is installed but it isn't among the
	// packages the driver has already processed.
	ErrPackageNotInstalled = errors.New("dpkggraph: package is not installed")

	// ErrDependencyNotInstalled is returned when a TargetVersionsNode
	// would have an empty target set. For a Recommends dependency the
	// ingestion driver swallows this and skips the edge; for every other
	// supported kind it propagates.
	ErrDependencyNotInstalled = errors.New("dpkggraph: dependency has no installed target")

	// ErrUnsupportedDependencyType is returned when a dependency's raw
	// type is not one of PreDepends, Depends, or Recommends.
	ErrUnsupportedDependencyType = errors.New("dpkggraph: unsupported dependency type")

	// ErrEmptyPackageCache is returned when the package source has no
	// installed packages at ingestion time.
	ErrEmptyPackageCache = errors.New("dpkggraph: package cache has no installed packages")
)

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
