package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort   string
	JWTSecret string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// OAuth login
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string
	// Request limits and CORS
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Web Push / reminder sweep
	VAPIDPublicKey       string
	VAPIDPrivateKey      string
	VAPIDSubject         string
	SweepSecret          string
	SweepIntervalMinutes int
	// Redis for caching/session revocation
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Registration security
	RegisterCaptchaEnabled bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads a JSON file into cfg if present. Returns error only for invalid JSON.
// Supports both flat keys and grouped sections (database/redis/log/push/oauth).
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getGroup := func(key string) map[string]any {
		if v, ok := raw[key]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
		return nil
	}

	if v := getString(raw, "app_port"); v != "" {
		out.AppPort = v
	}
	if v := getString(raw, "jwt_secret"); v != "" {
		out.JWTSecret = v
	}
	if v := getString(raw, "gin_mode"); v != "" {
		out.GinMode = v
	}
	if v := getString(raw, "gin_path"); v != "" {
		out.GinPath = v
	}
	if v := getInt(raw, "rate_limit_per_minute"); v != 0 {
		out.RateLimitPerMinute = v
	}
	if v := getString(raw, "allowed_origins"); v != "" {
		out.AllowedOrigins = splitAndTrim(v)
	}
	if getBool(raw, "register_captcha_enabled") {
		out.RegisterCaptchaEnabled = true
	}

	if m := getGroup("database"); m != nil {
		if v := getString(m, "uri"); v != "" {
			out.DatabaseURI = v
		}
		if v := getString(m, "host"); v != "" {
			out.DBHost = v
		}
		if v := getString(m, "port"); v != "" {
			out.DBPort = v
		}
		if v := getString(m, "user"); v != "" {
			out.DBUser = v
		}
		if v := getString(m, "password"); v != "" {
			out.DBPassword = v
		}
		if v := getString(m, "name"); v != "" {
			out.DBName = v
		}
	}

	if m := getGroup("redis"); m != nil {
		if v := getString(m, "host"); v != "" {
			out.RedisHost = v
		}
		if v := getInt(m, "port"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(m, "db"); v != 0 {
			out.RedisDB = v
		}
		if v := getString(m, "password"); v != "" {
			out.RedisPassword = v
		}
	}

	if m := getGroup("log"); m != nil {
		if v := getString(m, "level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(m, "path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(m, "max_size_mb"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(m, "max_backups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(m, "max_age_days"); v != 0 {
			out.LogMaxAgeDays = v
		}
		if getBool(m, "compress") {
			out.LogCompress = true
		}
	}

	if m := getGroup("push"); m != nil {
		if v := getString(m, "vapid_public_key"); v != "" {
			out.VAPIDPublicKey = v
		}
		if v := getString(m, "vapid_private_key"); v != "" {
			out.VAPIDPrivateKey = v
		}
		if v := getString(m, "vapid_subject"); v != "" {
			out.VAPIDSubject = v
		}
		if v := getString(m, "sweep_secret"); v != "" {
			out.SweepSecret = v
		}
		if v := getInt(m, "sweep_interval_minutes"); v != 0 {
			out.SweepIntervalMinutes = v
		}
	}

	if m := getGroup("oauth"); m != nil {
		if v := getString(m, "google_client_id"); v != "" {
			out.GoogleClientID = v
		}
		if v := getString(m, "google_client_secret"); v != "" {
			out.GoogleClientSecret = v
		}
		if v := getString(m, "redirect_base"); v != "" {
			out.OAuthRedirectBase = v
		}
	}

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.OAuthRedirectBase == "" {
		c.OAuthRedirectBase = "http://localhost:8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "gratitude"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.VAPIDSubject == "" {
		c.VAPIDSubject = "mailto:admin@gratitudecircle.app"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("GOOGLE_CLIENT_ID", ""); v != "" {
		c.GoogleClientID = v
	}
	if v := getEnv("GOOGLE_CLIENT_SECRET", ""); v != "" {
		c.GoogleClientSecret = v
	}
	if v := getEnv("OAUTH_REDIRECT_BASE", ""); v != "" {
		c.OAuthRedirectBase = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	if v := getEnv("VAPID_PUBLIC_KEY", ""); v != "" {
		c.VAPIDPublicKey = v
	}
	if v := getEnv("VAPID_PRIVATE_KEY", ""); v != "" {
		c.VAPIDPrivateKey = v
	}
	if v := getEnv("VAPID_SUBJECT", ""); v != "" {
		c.VAPIDSubject = v
	}
	if v := getEnv("SWEEP_SECRET", ""); v != "" {
		c.SweepSecret = v
	}
	if v := getEnv("SWEEP_INTERVAL_MINUTES", ""); v != "" {
		c.SweepIntervalMinutes = mustParseInt(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true" || v == "1"
	}
	if v := getEnv("REGISTER_CAPTCHA_ENABLED", ""); v != "" {
		c.RegisterCaptchaEnabled = v == "true" || v == "1"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
