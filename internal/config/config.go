package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		BaseURL            string   `yaml:"base_url"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	OAuth struct {
		ClientID      string `yaml:"client_id"`
		ClientSecret  string `yaml:"client_secret"`
		SigningSecret string `yaml:"signing_secret"`
		CodeTTL       string `yaml:"code_ttl"`
		AccessTTL     string `yaml:"access_ttl"`
		RefreshTTL    string `yaml:"refresh_ttl"`
	} `yaml:"oauth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee el YAML, aplica defaults, overrides por env y valida.
// path puede ser vacío: en ese caso la config sale solo de defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "tomora"
	}
	if c.OAuth.ClientID == "" {
		c.OAuth.ClientID = "tomora-skill-client-2024"
	}
	if c.OAuth.CodeTTL == "" {
		c.OAuth.CodeTTL = "5m"
	}
	if c.OAuth.AccessTTL == "" {
		c.OAuth.AccessTTL = "720h" // 30d
	}
	if c.OAuth.RefreshTTL == "" {
		c.OAuth.RefreshTTL = "8760h" // 365d
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}

	// Overrides por env
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate chequea que la config sea usable antes de arrancar.
func (c *Config) Validate() error {
	for _, d := range []struct{ name, val string }{
		{"oauth.code_ttl", c.OAuth.CodeTTL},
		{"oauth.access_ttl", c.OAuth.AccessTTL},
		{"oauth.refresh_ttl", c.OAuth.RefreshTTL},
		{"rate.login.window", c.Rate.Login.Window},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return fmt.Errorf("config: storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: storage.driver %q no soportado", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn requerido con driver postgres")
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind %q no soportado", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache.redis.addr requerido con kind redis")
	}
	// El secret del cliente y el de firma no tienen default: el fallback
	// hardcodeado del sistema anterior era un defecto, no un contrato.
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("config: oauth.client_secret requerido (OAUTH_CLIENT_SECRET)")
	}
	if len(c.OAuth.SigningSecret) < 32 {
		return fmt.Errorf("config: oauth.signing_secret debe tener al menos 32 bytes (OAUTH_SIGNING_SECRET)")
	}
	return nil
}

// Duration getters: Validate() garantiza que parsean.

func (c *Config) CodeTTL() time.Duration    { d, _ := time.ParseDuration(c.OAuth.CodeTTL); return d }
func (c *Config) AccessTTL() time.Duration  { d, _ := time.ParseDuration(c.OAuth.AccessTTL); return d }
func (c *Config) RefreshTTL() time.Duration { d, _ := time.ParseDuration(c.OAuth.RefreshTTL); return d }
func (c *Config) LoginRateWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Login.Window)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("OAUTH_CLIENT_ID"); ok {
		c.OAuth.ClientID = v
	}
	if v, ok := getEnvStr("OAUTH_CLIENT_SECRET"); ok {
		c.OAuth.ClientSecret = v
	}
	if v, ok := getEnvStr("OAUTH_SIGNING_SECRET"); ok {
		c.OAuth.SigningSecret = v
	}
	if v, ok := getEnvStr("OAUTH_CODE_TTL"); ok {
		c.OAuth.CodeTTL = v
	}
	if v, ok := getEnvStr("OAUTH_ACCESS_TTL"); ok {
		c.OAuth.AccessTTL = v
	}
	if v, ok := getEnvStr("OAUTH_REFRESH_TTL"); ok {
		c.OAuth.RefreshTTL = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
