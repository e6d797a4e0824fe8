package config

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem abstracts the filesystem operations the config loader
// needs, so tests can substitute an in-memory filesystem instead of
// touching $HOME. Grounded on internal/config/loader/loader.go's
// FileSystem/OSFS split in the teacher.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// OSFS implements FileSystem against the real operating system.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// DefaultFS returns the real-OS filesystem implementation.
func DefaultFS() FileSystem { return OSFS{} }

// Path resolves the config file location per spec.md §6:
// $XDG_CONFIG_HOME/kseqi/kseqi.conf, falling back to
// $HOME/.config/kseqi/kseqi.conf.
func Path(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kseqi", "kseqi.conf")
	}
	home := getenv("HOME")
	return filepath.Join(home, ".config", "kseqi", "kseqi.conf")
}

// EnsureExists creates the config file's parent directory and writes
// the bundled example if the file does not yet exist. It is a no-op
// (returns nil) if the file already exists.
func EnsureExists(fsys FileSystem, path string) error {
	if _, err := fsys.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return fsys.WriteFile(path, []byte(ExampleConfig), 0o644)
}

// ExampleConfig is the bundled example written when no config file is
// found. It doubles as the round-trip fixture spec.md §8 describes:
// parsing it and re-rendering each binding back to key_name ↘/↗ form
// should yield equivalent sequences.
const ExampleConfig = `# kseqi example configuration
# sequence = action, action, ...
# keys are separated by whitespace or the cosmetic ↘ (press) / ↗ (release) glyphs
# each key name is one press or one release, so every key appears twice

# Tap Left Control (press, release) to type an em dash.
leftcontrol leftcontrol = text —

# Hold Left Control, tap j, to save: Ctrl+S.
leftcontrol j j leftcontrol = key ctrl+s

# A chord: hold Left Control, tap x then s (Emacs-style save).
leftcontrol x x s s leftcontrol = key ctrl+x ctrl+s

# Hold Left Control, tap the grave (backtick) key, to open a terminal.
leftcontrol grave grave leftcontrol = exec x-terminal-emulator
`
