package expand

import (
	"sort"

	"github.com/outfieldlabs/cascade/internal/diagnostics"
	"github.com/outfieldlabs/cascade/internal/repository"
)

// fakeRepo is an in-memory ConfigRepository for the expand package's unit
// tests.
type fakeRepo struct {
	headers map[string]repository.Header
	groups  map[string][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{headers: map[string]repository.Header{}, groups: map[string][]string{}}
}

func (f *fakeRepo) set(path string, header repository.Header) {
	f.headers[path] = header
}

func (f *fakeRepo) setGroup(group string, options ...string) {
	sorted := append([]string(nil), options...)
	sort.Strings(sorted)
	f.groups[group] = sorted
}

func (f *fakeRepo) LoadHeader(configPath string) (repository.Header, error) {
	h, ok := f.headers[configPath]
	if !ok {
		return repository.Header{}, &diagnostics.ConfigNotFound{ConfigPath: configPath}
	}
	return h, nil
}

func (f *fakeRepo) GroupOptions(group string) ([]string, error) {
	return f.groups[group], nil
}

func (f *fakeRepo) Exists(group, option string) (bool, error) {
	for _, o := range f.groups[group] {
		if o == option {
			return true, nil
		}
	}
	return false, nil
}

func self() repository.Entry { return repository.Entry{IsSelf: true} }
