// Package config loads the server configuration from YAML, a .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hearthmud/internal/chat"
	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/logger"
	"github.com/lawnchairsociety/hearthmud/internal/namefilter"
)

var validate = validator.New()

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	Server      ServerSection     `yaml:"server"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Database    database.Config   `yaml:"database"`
	World       WorldConfig       `yaml:"world"`
	Password    PasswordConfig    `yaml:"password"`
	Names       namefilter.Config `yaml:"names"`
	Chat        chat.Config       `yaml:"chat"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     logger.Config     `yaml:"logging"`
}

// ServerSection configures the telnet listener and output formatting.
type ServerSection struct {
	Address          string        `yaml:"address" validate:"required"`
	PollInterval     time.Duration `yaml:"poll_interval" validate:"gt=0"`
	LivenessInterval time.Duration `yaml:"liveness_interval" validate:"gte=5s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" validate:"gt=0"`
	MaxLineLength    int           `yaml:"max_line_length" validate:"gte=16"`

	// Encoding is the outbound character set: utf-8, latin1 or cp437.
	Encoding  string `yaml:"encoding" validate:"omitempty,oneof=utf-8 latin1 cp437"`
	WrapWidth int    `yaml:"wrap_width" validate:"gte=0"`
	Prompt    string `yaml:"prompt"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address" validate:"required_if=Enabled true"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`

	// AllowedOrigins lists origins allowed to connect. Empty enforces
	// same-origin; "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	MaxMessageSize int64 `yaml:"max_message_size" validate:"gt=0"`
}

// WorldConfig locates the world data and where new characters begin.
type WorldConfig struct {
	DataFile      string   `yaml:"data_file" validate:"required"`
	TextFile      string   `yaml:"text_file"`
	StartRoom     string   `yaml:"start_room" validate:"required"`
	StartingItems []string `yaml:"starting_items"`
}

// PasswordConfig holds password validation and hashing settings.
type PasswordConfig struct {
	MinLength        int  `yaml:"min_length" validate:"gte=1,lte=72"`
	Cost             int  `yaml:"cost" validate:"omitempty,gte=4,lte=31"`
	RequireUppercase bool `yaml:"require_uppercase"`
	RequireLowercase bool `yaml:"require_lowercase"`
	RequireDigit     bool `yaml:"require_digit"`
	RequireSpecial   bool `yaml:"require_special"`
}

// ConnectionsConfig holds connection limit settings. 0 means unlimited.
type ConnectionsConfig struct {
	MaxPerIP int `yaml:"max_per_ip" validate:"gte=0"`
	MaxTotal int `yaml:"max_total" validate:"gte=0"`
}

// RateLimitConfig holds rate limiting settings for login attempts.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts" validate:"gte=1"`
	LockoutSeconds    int `yaml:"lockout_seconds" validate:"gte=1"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds" validate:"gtefield=LockoutSeconds"`
}

// MaintenanceConfig drives the periodic ticks.
type MaintenanceConfig struct {
	AutosaveInterval   time.Duration `yaml:"autosave_interval" validate:"gte=1m"`
	SpawnInterval      time.Duration `yaml:"spawn_interval" validate:"gte=1m"`
	MinutesPerGameHour int           `yaml:"minutes_per_game_hour" validate:"gte=1"`
	StartHour          int           `yaml:"start_hour" validate:"gte=0,lte=23"`
}

// DefaultConfig returns a ServerConfig with secure defaults.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Address:          ":4000",
			PollInterval:     20 * time.Millisecond,
			LivenessInterval: 5 * time.Second,
			WriteTimeout:     5 * time.Second,
			MaxLineLength:    1024,
			Encoding:         "utf-8",
			WrapWidth:        78,
			Prompt:           "> ",
		},
		WebSocket: WebSocketConfig{
			Address:        ":4080",
			Path:           "/ws",
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
		},
		Database: database.DefaultConfig(),
		World: WorldConfig{
			DataFile:  "data/world.yaml",
			TextFile:  "data/text.yaml",
			StartRoom: "square",
		},
		Password: PasswordConfig{
			MinLength:        8,
			Cost:             12,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireDigit:     true,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 3,
			MaxTotal: 100,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:       5,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		Chat: chat.DefaultConfig(),
		Maintenance: MaintenanceConfig{
			AutosaveInterval:   time.Minute,
			SpawnInterval:      time.Minute,
			MinutesPerGameHour: 2,
			StartHour:          8,
		},
		Logging: logger.DefaultConfig(),
	}
}

// envOverrides are the environment variables that replace file values when
// set and non-empty.
type envOverrides struct {
	Address        string `env:"HEARTH_ADDRESS"`
	WSAddress      string `env:"HEARTH_WS_ADDRESS"`
	WSEnabled      string `env:"HEARTH_WS_ENABLED"`
	DBDriver       string `env:"HEARTH_DB_DRIVER"`
	SQLitePath     string `env:"HEARTH_SQLITE_PATH"`
	BoltPath       string `env:"HEARTH_BOLT_PATH"`
	PGHost         string `env:"HEARTH_PG_HOST"`
	PGPort         *int   `env:"HEARTH_PG_PORT"`
	PGUser         string `env:"HEARTH_PG_USER"`
	PGPassword     string `env:"HEARTH_PG_PASSWORD"`
	PGDatabase     string `env:"HEARTH_PG_DATABASE"`
	WorldFile      string `env:"HEARTH_WORLD_FILE"`
	StartRoom      string `env:"HEARTH_START_ROOM"`
	LogLevel       string `env:"LOG_LEVEL"`
	LogFile        string `env:"LOG_FILE"`
	OutputEncoding string `env:"HEARTH_ENCODING"`
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadConfig loads server configuration from a YAML file, then applies
// environment overrides and validates the result. A missing file yields the
// defaults.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ServerConfig) applyEnv() error {
	var o envOverrides
	if _, err := env.UnmarshalFromEnviron(&o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Server.Address, o.Address)
	set(&c.Server.Encoding, o.OutputEncoding)
	set(&c.WebSocket.Address, o.WSAddress)
	set(&c.Database.Driver, o.DBDriver)
	set(&c.Database.SQLitePath, o.SQLitePath)
	set(&c.Database.BoltPath, o.BoltPath)
	set(&c.Database.Postgres.Host, o.PGHost)
	set(&c.Database.Postgres.User, o.PGUser)
	set(&c.Database.Postgres.Password, o.PGPassword)
	set(&c.Database.Postgres.Database, o.PGDatabase)
	set(&c.World.DataFile, o.WorldFile)
	set(&c.World.StartRoom, o.StartRoom)
	set(&c.Logging.Level, o.LogLevel)
	if o.PGPort != nil {
		c.Database.Postgres.Port = *o.PGPort
	}
	if o.WSEnabled != "" {
		enabled, err := strconv.ParseBool(o.WSEnabled)
		if err != nil {
			return fmt.Errorf("HEARTH_WS_ENABLED: %w", err)
		}
		c.WebSocket.Enabled = enabled
	}
	if o.LogFile != "" {
		c.Logging.FileEnabled = true
		c.Logging.FilePath = o.LogFile
	}
	return nil
}

// Validate checks every section's constraints.
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin compares the host of an Origin header with the request host.
// A missing Origin header comes from a non-browser client and is allowed.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true
	}
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	return strings.TrimSuffix(originHost, "/") == requestHost
}

// PasswordError is a user-facing password policy violation.
type PasswordError struct {
	Msg string
}

func (e *PasswordError) Error() string { return e.Msg }

// CheckPassword returns a *PasswordError when password breaks the policy.
func (c *PasswordConfig) CheckPassword(password string) error {
	minLen := c.MinLength
	if minLen <= 0 {
		minLen = 8
	}
	if err := validate.Var(password, "min="+strconv.Itoa(minLen)); err != nil {
		return &PasswordError{Msg: "Password must be at least " + strconv.Itoa(minLen) + " characters."}
	}
	if err := validate.Var(password, "max=72"); err != nil {
		return &PasswordError{Msg: "Password must be at most 72 characters."}
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case c.RequireUppercase && !hasUpper:
		return &PasswordError{Msg: "Password must contain at least one uppercase letter."}
	case c.RequireLowercase && !hasLower:
		return &PasswordError{Msg: "Password must contain at least one lowercase letter."}
	case c.RequireDigit && !hasDigit:
		return &PasswordError{Msg: "Password must contain at least one digit."}
	case c.RequireSpecial && !hasSpecial:
		return &PasswordError{Msg: "Password must contain at least one special character."}
	}
	return nil
}

// RequirementsText describes the policy, e.g. "min 8 chars, uppercase, digit".
func (c *PasswordConfig) RequirementsText() string {
	minLen := c.MinLength
	if minLen <= 0 {
		minLen = 8
	}
	parts := []string{"min " + strconv.Itoa(minLen) + " chars"}
	if c.RequireUppercase {
		parts = append(parts, "uppercase")
	}
	if c.RequireLowercase {
		parts = append(parts, "lowercase")
	}
	if c.RequireDigit {
		parts = append(parts, "digit")
	}
	if c.RequireSpecial {
		parts = append(parts, "special char")
	}
	return strings.Join(parts, ", ")
}
