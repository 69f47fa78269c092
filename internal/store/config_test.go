package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROADMAP_ADMIN_CONFIG_DIR", dir)

	cfg, err := LoadConfig(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.User != "admin" || cfg.PageSize != 20 || cfg.Timeout != 0 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
	if cfg.Log.File != filepath.Join(dir, "roadmap-admin.log") {
		t.Fatalf("log file: %q", cfg.Log.File)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROADMAP_ADMIN_CONFIG_DIR", dir)

	file := filepath.Join(dir, "config.yaml")
	body := "api_url: http://file.example/api\nuser: file-user\npage_size: 50\ntimeout: 3s\ntui:\n  profile: mono\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROADMAP_ADMIN_USER", "env-user")
	t.Setenv("ROADMAP_ADMIN_PAGE_SIZE", "30")

	cfg, err := LoadConfig(LoadOptions{Overrides: map[string]any{KeyPageSize: 10}})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.File != file {
		t.Fatalf("file: got %q want %q", cfg.File, file)
	}
	if cfg.APIURL != "http://file.example/api" {
		t.Fatalf("api url from file: %q", cfg.APIURL)
	}
	if cfg.User != "env-user" {
		t.Fatalf("env should beat file: %q", cfg.User)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("flag should beat env: %d", cfg.PageSize)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("timeout: %s", cfg.Timeout)
	}
	if cfg.TUI.Profile != "mono" {
		t.Fatalf("nested key: %q", cfg.TUI.Profile)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	t.Setenv("ROADMAP_ADMIN_CONFIG_DIR", t.TempDir())

	if _, err := LoadConfig(LoadOptions{Overrides: map[string]any{KeyPageSize: 0}}); err == nil {
		t.Fatalf("expected page_size error")
	}
	if _, err := LoadConfig(LoadOptions{Overrides: map[string]any{KeyAPIURL: "  "}}); err == nil {
		t.Fatalf("expected api_url error")
	}
}

func TestSetConfigValue_KeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROADMAP_ADMIN_CONFIG_DIR", dir)

	path, err := SetConfigValue("", KeyAPIURL, "http://one")
	if err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if _, err := SetConfigValue("", KeyTUIProfile, "mono"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if _, err := SetConfigValue("", "colour", "red"); err == nil {
		t.Fatalf("expected unknown key error")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "api_url: http://one") || !strings.Contains(string(b), "profile: mono") {
		t.Fatalf("config file missing keys:\n%s", b)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}

	cfg, err := LoadConfig(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "http://one" || cfg.TUI.Profile != "mono" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}
