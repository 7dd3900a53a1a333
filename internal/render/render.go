// Package render writes a resolved defaults list out as text or JSON, the
// resolver's analogue of the teacher's output package.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/outfieldlabs/cascade/internal/element"
)

// RenderText writes one line per surviving element, in list order:
//
//	group/option@package
//
// with the package clause omitted when empty, and a trailing
// "(skipped: reason)" annotation for entries the loader must not fetch.
func RenderText(w io.Writer, list []element.DefaultElement) {
	for _, e := range list {
		line := element.ConfigPath(e)
		if pkg := element.EffectivePackage(e); pkg != "" {
			line += "@" + pkg
		}
		if e.SkipLoad {
			fmt.Fprintf(w, "%s (skipped: %s)\n", line, e.SkipLoadReason)
			continue
		}
		fmt.Fprintln(w, line)
	}
}

type jsonEntry struct {
	ConfigPath  string `json:"config_path"`
	ConfigGroup string `json:"config_group,omitempty"`
	ConfigName  string `json:"config_name"`
	Package     string `json:"package,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	SkipLoad    bool   `json:"skip_load,omitempty"`
	SkipReason  string `json:"skip_reason,omitempty"`
}

// RenderJSON writes list as a JSON array of jsonEntry, one object per
// surviving element, in list order.
func RenderJSON(w io.Writer, list []element.DefaultElement) error {
	out := make([]jsonEntry, 0, len(list))
	for _, e := range list {
		out = append(out, jsonEntry{
			ConfigPath:  element.ConfigPath(e),
			ConfigGroup: e.ConfigGroup,
			ConfigName:  e.ConfigName,
			Package:     element.EffectivePackage(e),
			Primary:     e.Primary,
			SkipLoad:    e.SkipLoad,
			SkipReason:  e.SkipLoadReason,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
