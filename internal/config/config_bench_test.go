// internal/config/config_bench_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func benchConfigFile(b *testing.B, content string) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		b.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func benchConfig() *Config {
	return &Config{
		PriceAPIURL:      DefaultPriceAPIURL,
		RequestTimeoutMs: 5000,
		Retries:          2,
		RateLimitRPS:     5,
		Slippage:         0.5,
		Tokens:           []TokenConfig{{Symbol: "SOL"}, {Symbol: "USDC"}, {Symbol: "RWA"}},
	}
}

func BenchmarkLoadConfig(b *testing.B) {
	path := benchConfigFile(b, validConfigJSON)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		cfg, err := LoadConfig(path)
		if err != nil {
			b.Fatal(err)
		}
		if cfg == nil {
			b.Fatal("config is nil")
		}
	}
}

func BenchmarkLoadConfigWithEnvironment(b *testing.B) {
	b.Setenv("DEX2K_API_KEY", "env-api-key")
	b.Setenv("DEX2K_HOOK_WHITELIST", "GitqprRo8hM4V1Z7AcikDJpjYsyXXv5anyJDhE5aX6cq")
	path := benchConfigFile(b, validConfigJSON)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(path); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateConfigParallel(b *testing.B) {
	cfg := benchConfig()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := validateConfig(cfg); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkURLValidationWithCache(b *testing.B) {
	b.Run("First validation", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			urlCache.Delete("https://example.com/v1")
			if err := validateURLWithCache("https://example.com/v1", "http"); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Cached validation", func(b *testing.B) {
		if err := validateURLWithCache("https://example.com/v1", "http"); err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := validateURLWithCache("https://example.com/v1", "http"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
