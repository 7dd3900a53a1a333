// Package expand implements the Element Expander: turning one
// DefaultElement into its fully recursive subtree.
package expand

import (
	"errors"
	"strings"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/element"
	"github.com/outfieldlabs/cascade/internal/repository"
)

// Element expands e into its subtree: a stable pre-order traversal of its
// config's declared defaults list, with _self_ occupying its declared (or
// legacy-implied) slot. See spec §4.2.
func Element(e element.DefaultElement, repo repository.ConfigRepository, skipMissing bool) ([]element.DefaultElement, error) {
	if e.SkipLoad || e.IsDelete {
		return []element.DefaultElement{e}, nil
	}

	// An unresolved "${group}" token names no real config path yet: Phase D
	// rewrites config_name once the whole list is known, so this element is
	// treated as a terminal leaf here rather than probed against the
	// repository under its literal, still-templated name.
	if strings.Contains(e.ConfigName, "${") {
		return []element.DefaultElement{e}, nil
	}

	if element.IsMissing(e) {
		if skipMissing {
			e.MarkSkipped(element.ReasonMissingSkipped)
			return []element.DefaultElement{e}, nil
		}
		options, err := repo.GroupOptions(e.ConfigGroup)
		if err != nil {
			return nil, err
		}
		return nil, &diagnostics.MandatoryMissing{Group: e.ConfigGroup, Options: options}
	}

	configPath := element.ConfigPath(e)
	header, err := repo.LoadHeader(configPath)
	if err != nil {
		var notFound *diagnostics.ConfigNotFound
		if e.Optional && errors.As(err, &notFound) {
			e.MarkSkipped(element.ReasonMissingOptionalConfig)
			return []element.DefaultElement{e}, nil
		}
		return nil, err
	}

	selfIndex, err := selfSlot(header.Defaults, configPath)
	if err != nil {
		return nil, err
	}

	out := make([]element.DefaultElement, 0, len(header.Defaults)+1)
	if selfIndex < 0 {
		// Legacy rule: no explicit _self_ means it is implicit at the start.
		out = append(out, e)
	}
	for i, entry := range header.Defaults {
		if entry.IsSelf {
			if i == selfIndex {
				out = append(out, e)
			}
			continue
		}
		child := entry.Elem
		if e.Package != "" && e.Package2 == "" && child.Package == "" {
			child.Package = e.Package
		}
		child.Parent = configPath

		children, err := Element(child, repo, skipMissing)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}

	return out, nil
}

// selfSlot returns the index in defaults of the explicit _self_ entry, or
// -1 if none is declared (implicit leading self). A second explicit
// _self_ is a DuplicateSelf error.
func selfSlot(defaults []repository.Entry, configPath string) (int, error) {
	index := -1
	count := 0
	for i, entry := range defaults {
		if entry.IsSelf {
			count++
			index = i
		}
	}
	if count > 1 {
		return 0, &diagnostics.DuplicateSelf{ConfigPath: configPath}
	}
	if count == 0 {
		return -1, nil
	}
	return index, nil
}
