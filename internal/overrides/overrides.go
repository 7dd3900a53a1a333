// Package overrides parses the command-line override grammar from the
// specification and converts parsed overrides into synthetic
// element.DefaultElement values.
package overrides

import (
	"strings"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/element"
)

// OverrideRecord is the structured form of one CLI override string.
//
//	override  := [prefix] key ('=' value)?
//	prefix    := '+' | '~'
//	key       := group ( '@' pkg (':' pkg)? )?
//	value     := IDENT ( '/' IDENT )*
type OverrideRecord struct {
	Raw string

	Group string

	HasPackageClause bool   // '@' was present in the key at all
	Package          string // set from "@pkg" or "@pkg:pkg2"; empty for "@:pkg2" or no '@'
	HasPackage2      bool
	Package2         string // set from "@:pkg2" or "@pkg:pkg2"

	Value    string
	HasValue bool

	IsAdd    bool
	IsDelete bool
}

// Parser parses raw command-line override strings into OverrideRecords.
type Parser interface {
	Parse(raw []string) ([]OverrideRecord, error)
}

// GrammarParser is the Parser implementation for the grammar above.
type GrammarParser struct{}

// Parse implements Parser, parsing each raw string in order and stopping at
// the first grammar violation.
func (GrammarParser) Parse(raw []string) ([]OverrideRecord, error) {
	records := make([]OverrideRecord, 0, len(raw))
	for _, r := range raw {
		rec, err := parseOne(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseOne(raw string) (OverrideRecord, error) {
	rec := OverrideRecord{Raw: raw}
	s := raw

	switch {
	case strings.HasPrefix(s, "+"):
		rec.IsAdd = true
		s = s[1:]
	case strings.HasPrefix(s, "~"):
		rec.IsDelete = true
		s = s[1:]
	}

	key := s
	value := ""
	hasValue := false
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		key, value = s[:idx], s[idx+1:]
		hasValue = true
	} else if !rec.IsDelete {
		return OverrideRecord{}, &diagnostics.OverrideParseError{Input: raw, Reason: "missing EQUAL"}
	}

	group := key
	if idx := strings.IndexByte(key, '@'); idx >= 0 {
		rec.HasPackageClause = true
		group, rec.Package = key[:idx], key[idx+1:]
		if colon := strings.IndexByte(rec.Package, ':'); colon >= 0 {
			rec.Package2 = rec.Package[colon+1:]
			rec.Package = rec.Package[:colon]
			rec.HasPackage2 = true
		}
	}
	rec.Group = group

	if hasValue {
		trimmed := strings.TrimSpace(value)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			return OverrideRecord{}, &diagnostics.DeleteValueNotString{}
		}
		rec.Value = value
		rec.HasValue = true
	}

	if rec.IsAdd && rec.HasPackage2 {
		return OverrideRecord{}, &diagnostics.AddWithRename{}
	}

	return rec, nil
}

// ToDefaults converts parsed overrides into DefaultElements, in the same
// order they were given, each tagged from_override=true and
// parent="overrides" per spec.md §4.3.
func ToDefaults(records []OverrideRecord) ([]element.DefaultElement, error) {
	out := make([]element.DefaultElement, 0, len(records))
	for _, rec := range records {
		elem := element.DefaultElement{
			ConfigGroup:  rec.Group,
			ConfigName:   rec.Value,
			Package:      rec.Package,
			Parent:       element.ParentOverrides,
			FromOverride: true,
			IsAddOnly:    rec.IsAdd,
			IsDelete:     rec.IsDelete,
		}
		if rec.HasPackage2 {
			elem.Package2 = rec.Package2
		}
		if err := element.Validate(elem); err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}
