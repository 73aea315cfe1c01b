package buildcache

import "fmt"

// Unit is the caller-defined unit of work being fingerprinted and cached,
// for example a build target. Its id names the cache entry on disk.
type Unit interface {
	ID() string
}

// FileExpander is the capability a source selector needs to enumerate a
// unit's files. Units without it can only be keyed via an extra fingerprint.
type FileExpander interface {
	// ExpandFiles returns the unit's source files as absolute paths.
	// With recursive set, it also includes the files of every unit this
	// one depends on.
	ExpandFiles(recursive bool) ([]string, error)
}

// SourceSelector selects which of a unit's files contribute to its
// fingerprint.
type SourceSelector interface {
	// Select returns the absolute paths to fingerprint for unit.
	Select(unit Unit) ([]string, error)

	// Applicable reports whether unit exposes what this selector needs.
	Applicable(unit Unit) bool
}

// SelectorFunc adapts a selection function to a SourceSelector. It is the
// extension point for custom selection policies; applicability is the
// standard file-expansion capability check.
type SelectorFunc func(unit Unit) ([]string, error)

// Select implements SourceSelector.
func (f SelectorFunc) Select(unit Unit) ([]string, error) {
	return f(unit)
}

// Applicable implements SourceSelector.
func (f SelectorFunc) Applicable(unit Unit) bool {
	_, ok := unit.(FileExpander)
	return ok
}

// Canonical source selectors.
var (
	// NoSources selects nothing. Useful when a key is driven entirely by
	// an extra fingerprint.
	NoSources SourceSelector = SelectorFunc(func(Unit) ([]string, error) {
		return nil, nil
	})

	// OwnSources selects only the files directly owned by the unit.
	OwnSources SourceSelector = SelectorFunc(func(unit Unit) ([]string, error) {
		return expandFiles(unit, false)
	})

	// TransitiveSources selects the unit's files and the files of
	// everything it depends on, recursively.
	TransitiveSources SourceSelector = SelectorFunc(func(unit Unit) ([]string, error) {
		return expandFiles(unit, true)
	})
)

func expandFiles(unit Unit, recursive bool) ([]string, error) {
	expander, ok := unit.(FileExpander)
	if !ok {
		return nil, fmt.Errorf("unit %s cannot expand files", unit.ID())
	}
	return expander.ExpandFiles(recursive)
}
