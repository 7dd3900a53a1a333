// Package diagnostics holds the resolver's fixed error taxonomy. Every
// exported type implements error with the exact message template from the
// specification; the CLI layer prints these unchanged.
package diagnostics

import (
	"fmt"
	"strings"
)

// FormatGroup renders a dotted group path the way the original tool's
// human-readable messages do: slash-separated, not dot-separated. This is
// cosmetic only — the resolver's internal identity key stays dotted.
func FormatGroup(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}

// DuplicateSelf: two _self_ entries declared in one config header.
type DuplicateSelf struct {
	ConfigPath string
}

func (e *DuplicateSelf) Error() string {
	return fmt.Sprintf("Duplicate _self_ defined in %s", e.ConfigPath)
}

// MandatoryMissing: a "???" choice reached with skip_missing=false.
type MandatoryMissing struct {
	Group   string
	Options []string
}

func (e *MandatoryMissing) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You must specify '%s', e.g, %s=%s\nAvailable options:\n", FormatGroup(e.Group), FormatGroup(e.Group), firstOr(e.Options, "OPTION"))
	for _, o := range e.Options {
		fmt.Fprintf(&b, "\t%s\n", o)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func firstOr(opts []string, fallback string) string {
	if len(opts) == 0 {
		return fallback
	}
	return opts[0]
}

// NoMatchForOverride: a change-override ("group=opt") matched nothing.
type NoMatchForOverride struct {
	Group string
	Value string
}

func (e *NoMatchForOverride) Error() string {
	return fmt.Sprintf(
		"Could not override '%s'. No match in the defaults list.\nTo append to your default list use +%s=%s",
		FormatGroup(e.Group), FormatGroup(e.Group), e.Value,
	)
}

// DuplicateAdd: a "+group=opt" override targets a group (and package, if
// qualified) already present.
type DuplicateAdd struct {
	Group   string
	Package string
	Value   string
}

func (e *DuplicateAdd) Error() string {
	key := FormatGroup(e.Group)
	if e.Package != "" {
		key = fmt.Sprintf("%s@%s", key, e.Package)
	}
	return fmt.Sprintf("Could not add '%s=%s'. '%s' is already in the defaults list.", key, e.Value, key)
}

// DeleteNoMatch: a "~group[=opt]" override matched nothing.
type DeleteNoMatch struct {
	// Spec is the literal delete form as written: "group", "group=value",
	// or "group@pkg".
	Spec string
}

func (e *DeleteNoMatch) Error() string {
	return fmt.Sprintf("Could not delete. No match for '%s' in the defaults list.", e.Spec)
}

// PackageRenameNoMatch: "group@pkg:pkg2" matched no element at (group, pkg).
type PackageRenameNoMatch struct {
	Group   string
	Package string
}

func (e *PackageRenameNoMatch) Error() string {
	return fmt.Sprintf("Could not rename package. No match for '%s@%s' in the defaults list", FormatGroup(e.Group), e.Package)
}

// AddWithRename: "+group@a:b" — add syntax does not support rename.
type AddWithRename struct{}

func (e *AddWithRename) Error() string {
	return "Add syntax does not support package rename, remove + prefix"
}

// DeleteValueNotString: "~group=[list]" or "~group={...}".
type DeleteValueNotString struct{}

func (e *DeleteValueNotString) Error() string {
	return "Defaults list supported delete syntax is in the form ~group and ~group=value, where value is a group name (string)"
}

// OverrideParseError: the override grammar itself rejected the string.
// Raised by the parser and surfaced unchanged.
type OverrideParseError struct {
	Input  string
	Reason string
}

func (e *OverrideParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Input)
}

// InterpolationUnresolved: a "${group}" expression named an unknown group.
type InterpolationUnresolved struct {
	Expr string
}

func (e *InterpolationUnresolved) Error() string {
	return fmt.Sprintf("Could not resolve interpolation '%s'", e.Expr)
}

// ConfigNotFound: the repository has no header for a config path.
type ConfigNotFound struct {
	ConfigPath string
}

func (e *ConfigNotFound) Error() string {
	return fmt.Sprintf("Could not find config %q", e.ConfigPath)
}
