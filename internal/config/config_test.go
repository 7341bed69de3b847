package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("COURSES_AUTH_JWT_SECRET", "test-secret-value")
	t.Setenv("COURSES_MESSAGES_API_KEY", "test-api-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Bus.Subject != "courses_microservice" {
		t.Errorf("Bus.Subject = %q", cfg.Bus.Subject)
	}
	if cfg.Bus.AckWait != 30*time.Second {
		t.Errorf("Bus.AckWait = %v", cfg.Bus.AckWait)
	}
	if cfg.Messages.Timeout != 10*time.Second {
		t.Errorf("Messages.Timeout = %v", cfg.Messages.Timeout)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COURSES_SERVER_PORT", "9100")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "db:\n  driver: memory\ncache:\n  driver: memory\nserver:\n  port: 9000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != "memory" || cfg.Cache.Driver != "memory" {
		t.Errorf("drivers = %q/%q, want memory/memory", cfg.Database.Driver, cfg.Cache.Driver)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, env should win over file", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Server:   ServerConfig{Port: 8000},
		Database: DatabaseConfig{Driver: "memory"},
		Cache:    CacheConfig{Driver: "memory"},
		Messages: MessagesConfig{APIKey: "k"},
		Auth:     AuthConfig{JWTSecret: "s"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"no api key", func(c *Config) { c.Messages.APIKey = "" }},
		{"bad db driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestMessagesConfig_BaseURL(t *testing.T) {
	tests := map[string]string{
		"api.example.com":           "https://api.example.com",
		"api.example.com/":          "https://api.example.com",
		"http://localhost:8080/api": "http://localhost:8080/api",
	}
	for domain, want := range tests {
		if got := (MessagesConfig{APIDomain: domain}).BaseURL(); got != want {
			t.Errorf("BaseURL(%q) = %q, want %q", domain, got, want)
		}
	}
}
