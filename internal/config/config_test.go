package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))
	return home
}

func TestConfigPath(t *testing.T) {
	setHome(t)

	path, pathErr := ConfigPath()
	if pathErr != nil {
		t.Fatalf("ConfigPath: %v", pathErr)
	}

	base := filepath.Base(path)
	if base != "config.json" {
		t.Fatalf("unexpected config file: %q", base)
	}

	dirBase := filepath.Base(filepath.Dir(path))
	if dirBase != AppName {
		t.Fatalf("unexpected config dir: %q", filepath.Dir(path))
	}
}

func TestReadConfig_Missing(t *testing.T) {
	setHome(t)

	cfg, readErr := ReadConfig()
	if readErr != nil {
		t.Fatalf("ReadConfig: %v", readErr)
	}

	if cfg != (File{}) {
		t.Fatalf("expected empty config, got %#v", cfg)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	setHome(t)

	want := File{APIKey: "AIza", KeyringBackend: "file", Endpoint: "http://127.0.0.1:1/", AuthMode: "api-key"}
	if err := WriteConfig(want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	path, _ := ConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected perms: %v", info.Mode().Perm())
	}

	got, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestReadConfig_Invalid(t *testing.T) {
	setHome(t)

	path, _ := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ReadConfig()
	if err == nil || !strings.Contains(err.Error(), "config.json") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}

func TestEnsureKeyringDir(t *testing.T) {
	setHome(t)

	dir, err := EnsureKeyringDir()
	if err != nil {
		t.Fatalf("EnsureKeyringDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("keyring dir missing: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SHEETFIELD_TEST_DOTENV=from-file\nSHEETFIELD_TEST_PRESET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("SHEETFIELD_TEST_DOTENV", "")
	os.Unsetenv("SHEETFIELD_TEST_DOTENV")
	t.Setenv("SHEETFIELD_TEST_PRESET", "preset")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("SHEETFIELD_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("unexpected value: %q", got)
	}
	if got := os.Getenv("SHEETFIELD_TEST_PRESET"); got != "preset" {
		t.Fatalf("existing env overridden: %q", got)
	}
}
