package config

import "testing"

func TestParseEnv(t *testing.T) {
	t.Setenv("MEALGRID_TEST_NAME", "marketplace")
	t.Setenv("MEALGRID_TEST_PORT", "9001")

	var cfg struct {
		Name string `env:"MEALGRID_TEST_NAME"`
		Port int    `env:"MEALGRID_TEST_PORT" envDefault:"8080"`
	}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Name != "marketplace" {
		t.Fatalf("expected name marketplace, got %q", cfg.Name)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
}

func TestParseEnvDefault(t *testing.T) {
	var cfg struct {
		Addr string `env:"MEALGRID_TEST_MISSING_ADDR" envDefault:":8080"`
	}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}
