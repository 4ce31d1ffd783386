package config

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// GradeBand maps a minimum percentage to a letter grade. Bands are kept
// sorted by descending threshold so the first match wins.
type GradeBand struct {
	MinPercent float64
	Letter     string
}

// Config holds all application configuration.
type Config struct {
	ServerPort        string
	GinMode           string
	LogLevel          string
	LogFormat         string
	BankDir           string
	DefaultBank       string
	ShuffleQuestions  bool
	SecondsPerQuest   int
	MaxUploadBytes    int64
	SessionTTLMinutes int
	GradeScale        []GradeBand
	FallbackGrade     string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	scale, fallback := parseGradeScale(getEnv("GRADE_SCALE", "80:A+,60:B,40:C"))

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "pretty"),
		BankDir:           getEnv("BANK_DIR", "./banks"),
		DefaultBank:       getEnv("DEFAULT_BANK", ""),
		ShuffleQuestions:  getEnvBool("SHUFFLE_QUESTIONS", false),
		SecondsPerQuest:   getEnvInt("SECONDS_PER_QUESTION", 60),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 120),
		GradeScale:        scale,
		FallbackGrade:     fallback,
		AllowedOrigins:    parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseGradeScale parses "80:A+,60:B,40:C" into descending grade bands.
// An "else:X" entry overrides the fallback letter awarded below every band;
// the default fallback is "F".
func parseGradeScale(raw string) ([]GradeBand, string) {
	fallback := "F"
	var bands []GradeBand

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bits := strings.SplitN(part, ":", 2)
		if len(bits) != 2 {
			continue
		}
		threshold := strings.TrimSpace(bits[0])
		letter := strings.TrimSpace(bits[1])
		if letter == "" {
			continue
		}
		if strings.EqualFold(threshold, "else") {
			fallback = letter
			continue
		}
		min, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			continue
		}
		bands = append(bands, GradeBand{MinPercent: min, Letter: letter})
	}

	sort.Slice(bands, func(i, j int) bool {
		return bands[i].MinPercent > bands[j].MinPercent
	})

	return bands, fallback
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
