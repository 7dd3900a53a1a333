// Package resolve implements the List Expander / Override Applier: it
// merges a primary config's recursively-expanded defaults list with
// override-derived elements, applying adds, renames, changes, and deletes
// in that fixed order, then resolves interpolation.
package resolve

import (
	"fmt"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/element"
	"github.com/outfieldlabs/cascade/internal/expand"
	"github.com/outfieldlabs/cascade/internal/overrides"
	"github.com/outfieldlabs/cascade/internal/repository"
)

// ComputeElementDefaultsList recursively expands the primary element alone,
// with no overrides applied. This is the Phase B working list.
func ComputeElementDefaultsList(primary element.DefaultElement, repo repository.ConfigRepository, skipMissing bool) ([]element.DefaultElement, error) {
	primary.Primary = true
	return expand.Element(primary, repo, skipMissing)
}

// ConvertOverridesToDefaults converts parsed overrides into DefaultElements,
// re-exporting overrides.ToDefaults as part of the resolver's public API.
func ConvertOverridesToDefaults(records []overrides.OverrideRecord) ([]element.DefaultElement, error) {
	return overrides.ToDefaults(records)
}

// ExpandDefaultsList resolves seed = [primary] ++ converted_overrides into
// the final ordered list of config references. seed[0] must be the primary
// element; the rest must be override-derived (from_override=true).
func ExpandDefaultsList(seed []element.DefaultElement, repo repository.ConfigRepository, skipMissing bool) ([]element.DefaultElement, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("resolve: empty seed, a primary element is required")
	}
	primary := seed[0]
	overrideElems := seed[1:]

	working, err := ComputeElementDefaultsList(primary, repo, skipMissing)
	if err != nil {
		return nil, err
	}

	renames, changes, deletes, adds := bucket(overrideElems)

	// Adds run first so that a delete or change targeting a group only
	// introduced by an earlier "+group=opt" override in the same call has
	// something to find — see DESIGN.md's note on override ordering.
	working, err = applyAdds(working, adds, repo, skipMissing)
	if err != nil {
		return nil, err
	}
	if err := applyRenames(working, renames); err != nil {
		return nil, err
	}
	working, err = applyChanges(working, changes, deletes)
	if err != nil {
		return nil, err
	}
	if err := applyDeletes(working, deletes); err != nil {
		return nil, err
	}

	if err := interpolate(working); err != nil {
		return nil, err
	}

	return collapseDuplicates(working), nil
}

// bucket classifies override-derived elements for Phase C (applied in the
// order adds, renames, changes, deletes — see ExpandDefaultsList), preserving
// each bucket's relative order from the original override list.
func bucket(overrideElems []element.DefaultElement) (renames, changes, deletes, adds []element.DefaultElement) {
	for _, e := range overrideElems {
		switch {
		case e.IsDelete:
			deletes = append(deletes, e)
		case e.IsAddOnly:
			adds = append(adds, e)
		case e.Package2 != "":
			renames = append(renames, e)
		default:
			changes = append(changes, e)
		}
	}
	return
}

// findByIdentity returns the index of the first element in working whose
// (group, effective package) equals the override's, searching every
// element regardless of deletion status so a later override can
// re-target — and resurrect — a previously-deleted entry.
func findByIdentity(working []element.DefaultElement, group, pkg string) int {
	for i, w := range working {
		if w.ConfigGroup == group && element.EffectivePackage(w) == pkg {
			return i
		}
	}
	return -1
}

func applyRenames(working []element.DefaultElement, renames []element.DefaultElement) error {
	for _, r := range renames {
		idx := findByIdentity(working, r.ConfigGroup, r.Package)
		if idx < 0 {
			return &diagnostics.PackageRenameNoMatch{Group: r.ConfigGroup, Package: r.Package}
		}
		working[idx].Package2 = r.Package2
	}
	return nil
}

// applyChanges applies each "group=opt" change in turn. A change with no
// match in working normally errors with NoMatchForOverride, but if a delete
// in the same call targets the same identity, the pair is read as "set this
// group's value, then remove it": the change synthesizes the entry instead
// of erroring, and the delete phase that follows applies to it as usual. See
// DESIGN.md's note on the change-then-delete override interaction.
func applyChanges(working []element.DefaultElement, changes, deletes []element.DefaultElement) ([]element.DefaultElement, error) {
	for _, c := range changes {
		pkg := element.EffectivePackage(c)
		idx := findByIdentity(working, c.ConfigGroup, pkg)
		if idx < 0 {
			if !hasPendingDelete(deletes, c.ConfigGroup, pkg) {
				return nil, &diagnostics.NoMatchForOverride{Group: c.ConfigGroup, Value: c.ConfigName}
			}
			working = append(working, element.DefaultElement{
				ConfigGroup:  c.ConfigGroup,
				ConfigName:   c.ConfigName,
				Package:      c.Package,
				Parent:       element.ParentOverrides,
				FromOverride: true,
			})
			continue
		}
		working[idx].ConfigName = c.ConfigName
		// A change re-targeting a previously-deleted entry resurrects it.
		working[idx].IsDeleted = false
		working[idx].SkipLoad = false
		working[idx].SkipLoadReason = ""
	}
	return working, nil
}

// hasPendingDelete reports whether deletes contains an entry targeting the
// same (group, effective package) identity, so a same-call change with no
// current match can be synthesized rather than rejected outright.
func hasPendingDelete(deletes []element.DefaultElement, group, pkg string) bool {
	for _, d := range deletes {
		if d.ConfigGroup != group {
			continue
		}
		if element.EffectivePackage(d) != pkg {
			continue
		}
		return true
	}
	return false
}

func applyDeletes(working []element.DefaultElement, deletes []element.DefaultElement) error {
	for _, d := range deletes {
		idx := -1
		for i, w := range working {
			if w.ConfigGroup != d.ConfigGroup || element.EffectivePackage(w) != element.EffectivePackage(d) {
				continue
			}
			if d.ConfigName != "" && w.ConfigName != d.ConfigName {
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			return &diagnostics.DeleteNoMatch{Spec: deleteSpec(d)}
		}
		working[idx].IsDeleted = true
		working[idx].MarkSkipped(element.ReasonDeletedFromList)
	}
	return nil
}

func deleteSpec(d element.DefaultElement) string {
	group := diagnostics.FormatGroup(d.ConfigGroup)
	switch {
	case d.Package != "":
		return fmt.Sprintf("%s@%s", group, d.Package)
	case d.ConfigName != "":
		return fmt.Sprintf("%s=%s", group, d.ConfigName)
	default:
		return group
	}
}

func applyAdds(working, adds []element.DefaultElement, repo repository.ConfigRepository, skipMissing bool) ([]element.DefaultElement, error) {
	for _, a := range adds {
		for _, w := range working {
			if w.IsDeleted {
				continue
			}
			if w.ConfigGroup == a.ConfigGroup && element.EffectivePackage(w) == element.EffectivePackage(a) {
				return nil, &diagnostics.DuplicateAdd{Group: a.ConfigGroup, Package: element.EffectivePackage(a), Value: a.ConfigName}
			}
		}
		children, err := expand.Element(a, repo, skipMissing)
		if err != nil {
			return nil, err
		}
		working = append(working, children...)
	}
	return working, nil
}

// collapseDuplicates implements Phase E: when the same (group, effective
// package) identity appears twice among grouped, non-deleted, non-add-only
// entries (as when an added config pulls in a group already in the list),
// the later occurrence wins but keeps the first's position in the list.
// Ungrouped entries, the primary among them, are never collapsed.
func collapseDuplicates(working []element.DefaultElement) []element.DefaultElement {
	firstPos := map[element.Identity]int{}
	keep := make([]bool, len(working))
	for i := range keep {
		keep[i] = true
	}
	for i, w := range working {
		if w.IsDeleted || w.IsAddOnly || w.ConfigGroup == "" {
			continue
		}
		id := element.IdentityOf(w)
		if j, ok := firstPos[id]; ok {
			working[j] = w
			keep[i] = false
			continue
		}
		firstPos[id] = i
	}
	out := make([]element.DefaultElement, 0, len(working))
	for i, w := range working {
		if keep[i] {
			out = append(out, w)
		}
	}
	return out
}
