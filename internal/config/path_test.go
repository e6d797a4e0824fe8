package config

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/wzhd/kseqi/internal/keyseq"
)

// memFS is a minimal in-memory FileSystem for testing EnsureExists
// without touching the real filesystem.
type memFS struct {
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: make(map[string][]byte)} }

func (m *memFS) Open(name string) (fs.File, error) { return nil, fs.ErrNotExist }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *memFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; !ok {
		return nil, fs.ErrNotExist
	}
	return memFileInfo{path}, nil
}

func (m *memFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.files[path] = data
	return nil
}

func (m *memFS) MkdirAll(path string, perm os.FileMode) error { return nil }

type memFileInfo struct{ name string }

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return 0 }
func (i memFileInfo) Mode() fs.FileMode  { return 0 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }

func TestPathPrefersXDGConfigHome(t *testing.T) {
	getenv := func(k string) string {
		switch k {
		case "XDG_CONFIG_HOME":
			return "/xdg"
		case "HOME":
			return "/home/user"
		}
		return ""
	}
	want := "/xdg/kseqi/kseqi.conf"
	if got := Path(getenv); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestPathFallsBackToHome(t *testing.T) {
	getenv := func(k string) string {
		if k == "HOME" {
			return "/home/user"
		}
		return ""
	}
	want := "/home/user/.config/kseqi/kseqi.conf"
	if got := Path(getenv); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestEnsureExistsBootstrapsExampleOnce(t *testing.T) {
	fsys := newMemFS()
	path := "/home/user/.config/kseqi/kseqi.conf"

	if err := EnsureExists(fsys, path); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after EnsureExists: %v", err)
	}
	if string(data) != ExampleConfig {
		t.Error("bootstrapped file does not match ExampleConfig")
	}

	// A second call must not overwrite a file the user may have since
	// edited.
	fsys.files[path] = []byte("user edited this\n")
	if err := EnsureExists(fsys, path); err != nil {
		t.Fatalf("EnsureExists (second call): %v", err)
	}
	if string(fsys.files[path]) != "user edited this\n" {
		t.Error("EnsureExists overwrote an existing config file")
	}
}

// TestExampleConfigRoundTrips parses the bundled example file and
// checks every binding resolves cleanly and renders back to an
// equivalent key_seq of the same keycodes, per spec.md §8's
// round-trip property — modulo the cosmetic ↘/↗ glyphs, which parsing
// already treats as plain whitespace.
func TestExampleConfigRoundTrips(t *testing.T) {
	parsed, errs := Parse(ExampleConfig)
	if len(errs) != 0 {
		t.Fatalf("parsing bundled example: %v", errs)
	}
	if len(parsed) == 0 {
		t.Fatal("bundled example defines no bindings")
	}

	names := keyseq.NewNameResolver(nil)
	layout := fakeLayout{mapping: map[keyseq.Keysym]keyseq.Keycode{}}
	nextKeycode := keyseq.Keycode(9)
	for _, pb := range parsed {
		for _, name := range pb.KeySeq {
			sym, ok := names.Resolve(name)
			if !ok {
				t.Fatalf("bundled example uses unresolvable key name %q", name)
			}
			if _, ok := layout.mapping[sym]; !ok {
				layout.mapping[sym] = nextKeycode
				nextKeycode++
			}
		}
	}

	resolver := NewResolver(names, layout)
	resolved, resolveErrs := resolver.Resolve(parsed)
	if len(resolveErrs) != 0 {
		t.Fatalf("resolving bundled example: %v", resolveErrs)
	}
	if len(resolved) != len(parsed) {
		t.Fatalf("resolved %d of %d bundled bindings", len(resolved), len(parsed))
	}

	for i, rb := range resolved {
		if !rb.Sequence.Valid() {
			t.Errorf("binding %d: resolved sequence is not a valid length", i)
		}
		wantLen := len(parsed[i].KeySeq)
		if rb.Sequence.Len() != wantLen {
			t.Errorf("binding %d: Sequence.Len() = %d, want %d", i, rb.Sequence.Len(), wantLen)
		}
		for j, name := range parsed[i].KeySeq {
			sym, _ := names.Resolve(name)
			wantKc := layout.mapping[sym]
			if rb.Sequence.At(j) != wantKc {
				t.Errorf("binding %d key %d: keycode = %d, want %d", i, j, rb.Sequence.At(j), wantKc)
			}
		}
	}
}
