package resolve

import (
	"regexp"
	"strings"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/element"
)

// interpTokenRe matches one "${group}" interpolation token. The grammar is
// strictly ${IDENT}, optionally concatenated with literal text or other
// tokens (e.g. "${a}_${b}") — no wider expression language.
var interpTokenRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)

// interpolate implements Phase D: substitute every "${group}" token in a
// config_name with the resolved choice for that group, in a single
// left-to-right pass. The element being resolved is excluded from its own
// scope, and any reference left unresolved after the pass is fatal.
func interpolate(working []element.DefaultElement) error {
	choices := map[string]string{}
	for _, w := range working {
		if w.IsDeleted || w.SkipLoadReason == element.ReasonMissingOptionalConfig {
			continue
		}
		if w.ConfigGroup != "" {
			choices[w.ConfigGroup] = w.ConfigName
		}
	}

	for i := range working {
		w := &working[i]
		if !strings.Contains(w.ConfigName, "${") {
			continue
		}
		var unresolved error
		resolved := interpTokenRe.ReplaceAllStringFunc(w.ConfigName, func(token string) string {
			if unresolved != nil {
				return token
			}
			group := interpTokenRe.FindStringSubmatch(token)[1]
			if group == w.ConfigGroup {
				unresolved = &diagnostics.InterpolationUnresolved{Expr: token}
				return token
			}
			choice, ok := choices[group]
			if !ok {
				unresolved = &diagnostics.InterpolationUnresolved{Expr: token}
				return token
			}
			return choice
		})
		if unresolved != nil {
			return unresolved
		}
		w.ConfigName = resolved
	}
	return nil
}
