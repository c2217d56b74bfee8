package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	"gopkg.in/yaml.v3"
)

// FileNames are the config names discovered alongside a garment collection.
var FileNames = []string{"wardrobe-coverage.yaml", "wardrobe-coverage.yml"}

// Load loads configuration from a file path or discovers it alongside the
// garment collection. Environment overrides are applied last.
func Load(configPath, garmentsPath string) (map[string]any, error) {
	cfg, err := loadOrDiscover(configPath, garmentsPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadOrDiscover(configPath, garmentsPath string) (map[string]any, error) {
	if configPath != "" {
		return loadFile(configPath)
	}
	if garmentsPath == "" {
		return make(map[string]any), nil
	}

	dir := garmentsPath
	if info, err := os.Stat(garmentsPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(garmentsPath)
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}

	return make(map[string]any), nil
}

func loadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return make(map[string]any), nil
	}
	return result, nil
}

// envOverrides maps environment variables onto section/key pairs.
var envOverrides = []struct {
	env, section, key string
}{
	{"WARDROBE_ADDR", "server", "addr"},
	{"WARDROBE_DB", "catalog", "path"},
	{"WARDROBE_REDIS_ADDR", "cache", "redis_addr"},
	{"WARDROBE_REDIS_PASSWORD", "cache", "redis_password"},
	{"WARDROBE_LOG_LEVEL", "log", "level"},
	{"WARDROBE_LOG_FORMAT", "log", "format"},
}

func applyEnvOverrides(cfg map[string]any) {
	for _, o := range envOverrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		section, ok := cfg[o.section].(map[string]any)
		if !ok {
			section = make(map[string]any)
			cfg[o.section] = section
		}
		section[o.key] = v
	}
}

// Options returns the enumerated option lists from the `options` section.
func Options(cfg map[string]any) analysis.OptionUniverses {
	return analysis.ParseOptionUniverses(GetMap(cfg, "options"))
}

// helpers

// GetMap returns the nested map under key, or nil.
func GetMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if mm, ok := m[key].(map[string]any); ok {
		return mm
	}
	return nil
}

// GetString returns the string under key, or fallback.
func GetString(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

// GetFloat returns the number under key, or fallback.
func GetFloat(m map[string]any, key string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	switch val := m[key].(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetInt returns the integer under key, or fallback.
func GetInt(m map[string]any, key string, fallback int) int {
	return int(GetFloat(m, key, float64(fallback)))
}

// GetDuration parses a duration string ("5m", "30s") under key, or returns
// fallback. Bare numbers are read as seconds.
func GetDuration(m map[string]any, key string, fallback time.Duration) time.Duration {
	if m == nil {
		return fallback
	}
	switch val := m[key].(type) {
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			return d
		}
	case int:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	}
	return fallback
}
