// Package dpkgsource defines the abstract view of an installed-package
// database that dpkggraph ingests, and StatusFileCache, a concrete reader
// of dpkg's status file (the format /var/lib/dpkg/status uses: RFC
// 2822-style stanzas separated by a blank line, one per package dpkg knows
// about; only installed ones are kept).
//
// The interfaces exist so dpkggraph never depends on a concrete file
// format; StatusFileCache is the one implementation this module ships.
// Dependency alternatives are resolved without any version-constraint
// checking: an alternative is considered a target iff its package name (or
// a package name it names in a Provides field) is itself installed.
package dpkgsource
