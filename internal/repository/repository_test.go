package repository

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHeaderShorthandAndSelf(t *testing.T) {
	tmp := t.TempDir()
	writeYAML(t, filepath.Join(tmp, "config.yaml"), `
defaults:
  - db: mysql
  - _self_
  - optional: true
    log: console
package: app.settings
`)

	repo := NewFSRepository(tmp)
	header, err := repo.LoadHeader("config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header.Package != "app.settings" {
		t.Errorf("Package = %q, want %q", header.Package, "app.settings")
	}
	if len(header.Defaults) != 3 {
		t.Fatalf("len(Defaults) = %d, want 3", len(header.Defaults))
	}
	if header.Defaults[0].IsSelf {
		t.Errorf("Defaults[0] should not be self")
	}
	if got := header.Defaults[0].Elem; got.ConfigGroup != "db" || got.ConfigName != "mysql" {
		t.Errorf("Defaults[0] = %+v, want group=db option=mysql", got)
	}
	if !header.Defaults[1].IsSelf {
		t.Errorf("Defaults[1] should be self")
	}
	if got := header.Defaults[2].Elem; got.ConfigGroup != "log" || got.ConfigName != "console" || !got.Optional {
		t.Errorf("Defaults[2] = %+v, want group=log option=console optional=true", got)
	}
}

func TestLoadHeaderExplicitPackageRename(t *testing.T) {
	tmp := t.TempDir()
	writeYAML(t, filepath.Join(tmp, "config.yaml"), `
defaults:
  - group: db
    option: mysql
    package: primary
    package2: secondary
`)
	repo := NewFSRepository(tmp)
	header, err := repo.LoadHeader("config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := header.Defaults[0].Elem
	if got.Package != "primary" || got.Package2 != "secondary" {
		t.Errorf("got %+v, want package=primary package2=secondary", got)
	}
}

func TestLoadHeaderDuplicateSelfIsNotRejectedByRepository(t *testing.T) {
	// The repository is a pure data layer; DuplicateSelf is an
	// expansion-time diagnostic, not a parse error.
	tmp := t.TempDir()
	writeYAML(t, filepath.Join(tmp, "config.yaml"), `
defaults:
  - _self_
  - _self_
`)
	repo := NewFSRepository(tmp)
	header, err := repo.LoadHeader("config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(header.Defaults) != 2 || !header.Defaults[0].IsSelf || !header.Defaults[1].IsSelf {
		t.Fatalf("got %+v", header.Defaults)
	}
}

func TestLoadHeaderMissingConfig(t *testing.T) {
	tmp := t.TempDir()
	repo := NewFSRepository(tmp)
	_, err := repo.LoadHeader("missing")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestGroupOptionsSortedAndDeduped(t *testing.T) {
	tmp := t.TempDir()
	mkYAML(t, filepath.Join(tmp, "db", "mysql.yaml"), "package: db.mysql\n")
	mkYAML(t, filepath.Join(tmp, "db", "postgres.yml"), "package: db.postgres\n")

	repo := NewFSRepository(tmp)
	options, err := repo.GroupOptions("db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"mysql", "postgres"}
	if len(options) != len(want) {
		t.Fatalf("options = %v, want %v", options, want)
	}
	for i := range want {
		if options[i] != want[i] {
			t.Errorf("options[%d] = %q, want %q", i, options[i], want[i])
		}
	}
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	mkYAML(t, filepath.Join(tmp, "db", "mysql.yaml"), "")

	repo := NewFSRepository(tmp)
	ok, err := repo.Exists("db", "mysql")
	if err != nil || !ok {
		t.Fatalf("Exists(db, mysql) = %v, %v; want true, nil", ok, err)
	}
	ok, err = repo.Exists("db", "oracle")
	if err != nil || ok {
		t.Fatalf("Exists(db, oracle) = %v, %v; want false, nil", ok, err)
	}
}

func TestSearchPathPriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	mkYAML(t, filepath.Join(low, "config.yaml"), "package: low\n")
	mkYAML(t, filepath.Join(high, "config.yaml"), "package: high\n")

	repo := NewFSRepository(high, low)
	header, err := repo.LoadHeader("config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header.Package != "high" {
		t.Errorf("Package = %q, want %q (first root should win)", header.Package, "high")
	}
}

func writeYAML(t *testing.T, path, content string) {
	t.Helper()
	mkYAML(t, path, content)
}

func mkYAML(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
