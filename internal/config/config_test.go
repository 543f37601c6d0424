package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Create temporary config file
	content := `
api:
  baseurl: "https://converter.example.com/api"
  timeout: "10s"

poll:
  interval: "2s"
  warmup: "1s"

log:
  level: "debug"
`

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Base URL gets a trailing slash so endpoint paths can be appended
	if cfg.API.BaseURL != "https://converter.example.com/api/" {
		t.Errorf("Expected normalized base URL, got %s", cfg.API.BaseURL)
	}

	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %s", cfg.API.Timeout)
	}

	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("Expected poll interval 2s, got %s", cfg.Poll.Interval)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := "api:\n  baseurl: \"http://localhost:9000/\"\n"

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("Expected default poll interval 5s, got %s", cfg.Poll.Interval)
	}
	if cfg.Poll.Warmup != 5*time.Second {
		t.Errorf("Expected default poll warmup 5s, got %s", cfg.Poll.Warmup)
	}
	if cfg.Stub.Port != 8080 {
		t.Errorf("Expected default stub port 8080, got %d", cfg.Stub.Port)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error when loading nonexistent file")
	}
}
