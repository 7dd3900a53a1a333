// Package repository defines the ConfigRepository oracle the resolver reads
// from, plus a filesystem-backed implementation that parses YAML config
// headers with gopkg.in/yaml.v3 and enumerates group options with
// doublestar globs.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/element"
)

// Entry is one declared line of a config's defaults list: either the
// _self_ sentinel or a concrete element. Kept as a tagged variant rather
// than a magic config_name string, per the resolver's design notes.
type Entry struct {
	IsSelf bool
	Elem   element.DefaultElement
}

// Header is the pure data a ConfigRepository hands back for one config
// path: its declared defaults list and its declared default package.
type Header struct {
	Defaults []Entry
	Package  string
}

// ConfigRepository is the read-only oracle the resolver consults. It never
// caches on the resolver's behalf — callers that want caching wrap it.
type ConfigRepository interface {
	// LoadHeader returns the defaults list and declared package of
	// configPath. Returns a *diagnostics.ConfigNotFound if absent.
	LoadHeader(configPath string) (Header, error)
	// GroupOptions returns the ordered (lexically sorted) option names
	// declared under group.
	GroupOptions(group string) ([]string, error)
	// Exists reports whether group/option is a known config.
	Exists(group, option string) (bool, error)
}

// rawHeader is the on-disk YAML shape of a config file's header.
type rawHeader struct {
	Defaults []Entry `yaml:"defaults"`
	Package  string  `yaml:"package"`
}

// UnmarshalYAML decodes one defaults-list entry. Entries are either the
// bare scalar "_self_", a shorthand single-key mapping ("db: mysql" means
// group=db, option=mysql), or an explicit mapping using the reserved keys
// group/option/package/package2/optional (optionally combined with one
// shorthand key, e.g. "optional: true" next to "log: console").
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "_self_" {
			e.IsSelf = true
			return nil
		}
		// A bare scalar that isn't "_self_" names an ungrouped top-level
		// config directly, e.g. "- readme".
		e.Elem = element.DefaultElement{ConfigName: s}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("defaults entry: expected a mapping or \"_self_\"")
	}

	var elem element.DefaultElement
	shorthandSeen := false

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		val := value.Content[i+1]
		switch key {
		case "group":
			if err := val.Decode(&elem.ConfigGroup); err != nil {
				return err
			}
		case "option":
			if err := val.Decode(&elem.ConfigName); err != nil {
				return err
			}
		case "package":
			if err := val.Decode(&elem.Package); err != nil {
				return err
			}
		case "package2":
			if err := val.Decode(&elem.Package2); err != nil {
				return err
			}
		case "optional":
			if err := val.Decode(&elem.Optional); err != nil {
				return err
			}
		default:
			if shorthandSeen {
				return fmt.Errorf("defaults entry: more than one group shorthand key (%q)", key)
			}
			shorthandSeen = true
			elem.ConfigGroup = key
			if err := val.Decode(&elem.ConfigName); err != nil {
				return fmt.Errorf("defaults entry: option value for %q must be a string: %w", key, err)
			}
		}
	}
	e.Elem = elem
	return nil
}

// FSRepository is a ConfigRepository backed by a priority-ordered list of
// search-path roots, the filesystem analogue of the teacher's
// global-then-repo config precedence: the first root that has the file
// wins.
type FSRepository struct {
	Roots []string
}

// NewFSRepository builds a repository searching roots in order.
func NewFSRepository(roots ...string) *FSRepository {
	return &FSRepository{Roots: roots}
}

func (r *FSRepository) configFile(configPath string) (string, bool) {
	for _, root := range r.Roots {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(root, configPath+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// LoadHeader implements ConfigRepository.
func (r *FSRepository) LoadHeader(configPath string) (Header, error) {
	path, ok := r.configFile(configPath)
	if !ok {
		return Header{}, &diagnostics.ConfigNotFound{ConfigPath: configPath}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var raw rawHeader
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Header{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return Header{Defaults: raw.Defaults, Package: raw.Package}, nil
}

// groupDir converts a dotted group path to its directory form.
func groupDir(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}

// GroupOptions implements ConfigRepository using doublestar to enumerate
// *.yaml/*.yml files directly under the group's directory across every
// search root, deduplicated and lexically sorted.
func (r *FSRepository) GroupOptions(group string) ([]string, error) {
	seen := map[string]bool{}
	dir := groupDir(group)
	for _, root := range r.Roots {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			glob := filepath.ToSlash(filepath.Join(root, dir, pattern))
			matches, err := doublestar.FilepathGlob(glob)
			if err != nil {
				return nil, fmt.Errorf("listing options for group %q: %w", group, err)
			}
			for _, m := range matches {
				name := filepath.Base(m)
				name = strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
				seen[name] = true
			}
		}
	}
	options := make([]string, 0, len(seen))
	for name := range seen {
		options = append(options, name)
	}
	sort.Strings(options)
	return options, nil
}

// Exists implements ConfigRepository.
func (r *FSRepository) Exists(group, option string) (bool, error) {
	options, err := r.GroupOptions(group)
	if err != nil {
		return false, err
	}
	for _, o := range options {
		if o == option {
			return true, nil
		}
	}
	return false, nil
}
