package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvSeconds(t *testing.T) {
	t.Setenv("TTL_OK", "30")
	t.Setenv("TTL_BAD", "abc")
	t.Setenv("TTL_ZERO", "0")

	if got := GetEnvSeconds("TTL_OK", time.Minute); got != 30*time.Second {
		t.Errorf("TTL_OK: got %v", got)
	}
	if got := GetEnvSeconds("TTL_BAD", time.Minute); got != time.Minute {
		t.Errorf("TTL_BAD: got %v", got)
	}
	if got := GetEnvSeconds("TTL_ZERO", time.Minute); got != time.Minute {
		t.Errorf("TTL_ZERO: got %v", got)
	}
	if got := GetEnvSeconds("TTL_UNSET_FOR_TEST", time.Minute); got != time.Minute {
		t.Errorf("unset: got %v", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("ORIGINS", " https://a.example , ,https://b.example")

	got := GetEnvList("ORIGINS", []string{"*"})
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("GetEnvList: got %v", got)
	}
	if got := GetEnvList("ORIGINS_UNSET_FOR_TEST", []string{"*"}); len(got) != 1 || got[0] != "*" {
		t.Errorf("fallback: got %v", got)
	}
}

func TestParseStreams(t *testing.T) {
	got := ParseStreams("a=https://cdn/a/index.m3u8, b = https://cdn/b.m3u8?sig=x=y ,bad,=https://x,c=")

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if got["a"] != "https://cdn/a/index.m3u8" {
		t.Errorf("a: got %q", got["a"])
	}
	if got["b"] != "https://cdn/b.m3u8?sig=x=y" {
		t.Errorf("b: got %q", got["b"])
	}
}

func TestLoadStreams(t *testing.T) {
	t.Setenv("GMA7_URL", "https://example.cdn/live/gma7/index.m3u8")
	t.Setenv("TV5_HD_URL", "")
	t.Setenv("STREAMS", "extra=https://example.cdn/extra.m3u8")

	got := LoadStreams()

	if got["gma7"] != "https://example.cdn/live/gma7/index.m3u8" {
		t.Errorf("gma7: got %q", got["gma7"])
	}
	if _, ok := got["tv5hd"]; ok {
		t.Error("tv5hd should be absent when its URL is empty")
	}
	if got["extra"] != "https://example.cdn/extra.m3u8" {
		t.Errorf("extra: got %q", got["extra"])
	}
}

func TestLoad_reads_env_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PROXY_TEST_FROM_FILE=yes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROXY_TEST_FROM_FILE", "")
	os.Unsetenv("PROXY_TEST_FROM_FILE")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := GetEnv("PROXY_TEST_FROM_FILE", "no"); got != "yes" {
		t.Errorf("got %q", got)
	}
}

func TestLoad_missing_file(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing file")
	}
}
