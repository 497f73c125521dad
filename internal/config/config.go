package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration options for the time tracker application
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Mirror      MirrorConfig      `mapstructure:"mirror"`
	Timer       TimerConfig       `mapstructure:"timer"`
	Identity    IdentityConfig    `mapstructure:"identity"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Display     DisplayConfig     `mapstructure:"display"`
	Application ApplicationConfig `mapstructure:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `mapstructure:"dir" env:"TT_DB_DIR"`
	Filename       string        `mapstructure:"filename" env:"TT_DB_FILENAME"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" env:"TT_DB_QUERY_TIMEOUT"`
	DirPermissions uint32        `mapstructure:"dir_permissions" env:"TT_DB_DIR_PERMISSIONS"`
}

// MirrorConfig holds the session mirror store configuration
type MirrorConfig struct {
	Dir        string `mapstructure:"dir" env:"TT_MIRROR_DIR"`
	SyncWrites bool   `mapstructure:"sync_writes" env:"TT_MIRROR_SYNC_WRITES"`
	InMemory   bool   `mapstructure:"in_memory" env:"TT_MIRROR_IN_MEMORY"`
}

// TimerConfig holds timer behaviour configuration
type TimerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" env:"TT_TIMER_TICK_INTERVAL"`
}

// IdentityConfig names the user every command acts for
type IdentityConfig struct {
	UserID         int64 `mapstructure:"user_id" env:"TT_USER_ID"`
	OrganizationID int64 `mapstructure:"organization_id" env:"TT_ORG_ID"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	ProjectNameMaxLength int           `mapstructure:"project_name_max_length" env:"TT_VALIDATION_PROJECT_NAME_MAX"`
	DescriptionMaxLength int           `mapstructure:"description_max_length" env:"TT_VALIDATION_DESCRIPTION_MAX"`
	MaxEntryDuration     time.Duration `mapstructure:"max_entry_duration" env:"TT_VALIDATION_MAX_DURATION"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat string `mapstructure:"time_format" env:"TT_DISPLAY_TIME_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" env:"TT_APP_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" env:"TT_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, ".tt")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDir,
			Filename:       "tt.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Mirror: MirrorConfig{
			Dir:        filepath.Join(defaultDir, "session"),
			SyncWrites: true,
		},
		Timer: TimerConfig{
			TickInterval: time.Second,
		},
		Identity: IdentityConfig{
			UserID:         1,
			OrganizationID: 1,
		},
		Validation: ValidationConfig{
			ProjectNameMaxLength: 255,
			DescriptionMaxLength: 1000,
			MaxEntryDuration:     7 * 24 * time.Hour,
		},
		Display: DisplayConfig{
			TimeFormat: "2006-01-02 15:04:05",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("TT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("TT_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if perms := os.Getenv("TT_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Mirror configuration
	if dir := os.Getenv("TT_MIRROR_DIR"); dir != "" {
		c.Mirror.Dir = dir
	}
	if sync := os.Getenv("TT_MIRROR_SYNC_WRITES"); sync != "" {
		c.Mirror.SyncWrites = ParseBoolWithFallback(sync, c.Mirror.SyncWrites)
	}
	if inMemory := os.Getenv("TT_MIRROR_IN_MEMORY"); inMemory != "" {
		c.Mirror.InMemory = ParseBoolWithFallback(inMemory, c.Mirror.InMemory)
	}

	// Timer configuration
	if interval := os.Getenv("TT_TIMER_TICK_INTERVAL"); interval != "" {
		c.Timer.TickInterval = ParseDurationWithFallback(interval, c.Timer.TickInterval)
	}

	// Identity configuration
	if userID := os.Getenv("TT_USER_ID"); userID != "" {
		if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
			c.Identity.UserID = id
		}
	}
	if orgID := os.Getenv("TT_ORG_ID"); orgID != "" {
		if id, err := strconv.ParseInt(orgID, 10, 64); err == nil {
			c.Identity.OrganizationID = id
		}
	}

	// Validation configuration
	if maxLen := os.Getenv("TT_VALIDATION_PROJECT_NAME_MAX"); maxLen != "" {
		c.Validation.ProjectNameMaxLength = ParseIntWithFallback(maxLen, c.Validation.ProjectNameMaxLength)
	}
	if maxLen := os.Getenv("TT_VALIDATION_DESCRIPTION_MAX"); maxLen != "" {
		c.Validation.DescriptionMaxLength = ParseIntWithFallback(maxLen, c.Validation.DescriptionMaxLength)
	}
	if maxDur := os.Getenv("TT_VALIDATION_MAX_DURATION"); maxDur != "" {
		c.Validation.MaxEntryDuration = ParseDurationWithFallback(maxDur, c.Validation.MaxEntryDuration)
	}

	// Display configuration
	if format := os.Getenv("TT_DISPLAY_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}

	// Application configuration
	if timeout := os.Getenv("TT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	// Validate mirror configuration
	if c.Mirror.Dir == "" && !c.Mirror.InMemory {
		return &ConfigError{Field: "mirror.dir", Message: "mirror directory cannot be empty unless in_memory is set"}
	}

	// Validate timer configuration
	if c.Timer.TickInterval <= 0 {
		return &ConfigError{Field: "timer.tick_interval", Message: "tick interval must be positive"}
	}

	// Validate identity configuration
	if c.Identity.UserID <= 0 {
		return &ConfigError{Field: "identity.user_id", Message: "user id must be positive"}
	}
	if c.Identity.OrganizationID <= 0 {
		return &ConfigError{Field: "identity.organization_id", Message: "organization id must be positive"}
	}

	// Validate validation configuration
	if c.Validation.ProjectNameMaxLength < 1 {
		return &ConfigError{Field: "validation.project_name_max_length", Message: "project name maximum length must be at least 1"}
	}
	if c.Validation.DescriptionMaxLength < 0 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length cannot be negative"}
	}
	if c.Validation.MaxEntryDuration <= 0 {
		return &ConfigError{Field: "validation.max_entry_duration", Message: "max entry duration must be positive"}
	}

	// Validate display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
