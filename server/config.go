package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hnkNkm/Lipona/internal/lipona/interp"
	"github.com/hnkNkm/Lipona/server/dao"
	"github.com/hnkNkm/Lipona/server/dao/inmem"
	"github.com/hnkNkm/Lipona/server/dao/sqlite"
)

// DBType is the type of execution-history persistence backend.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(s) {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a persistence
// layer.
type Database struct {
	Type DBType

	// DataFile is the path to the sqlite file. Only applicable to DatabaseSQLite.
	DataFile string
}

// Connect performs all logic needed to initialize the configured execution
// repository for use.
func (db Database) Connect() (dao.ExecutionRepository, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewExecutionsRepository(), nil
	case DatabaseSQLite:
		if dir := filepath.Dir(db.DataFile); dir != "." {
			if err := os.MkdirAll(dir, 0770); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		repo, err := sqlite.NewExecutionsRepository(db.DataFile)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return repo, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate returns an error if the Database does not have the correct fields
// set for its type.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataFile == "" {
			return fmt.Errorf("DataFile not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Limits holds the interpreter's resource caps. Zero values mean "use the
// documented default"; non-zero values below the default are rejected by
// Validate rather than silently clamped, since lowering them would change
// the language's observable semantics.
type Limits struct {
	MaxLoopIterations int `toml:"max_loop_iterations"`
	MaxCallDepth      int `toml:"max_call_depth"`
}

// FillDefaults returns a copy of l with zero fields set to the documented
// defaults.
func (l Limits) FillDefaults() Limits {
	out := l
	if out.MaxLoopIterations == 0 {
		out.MaxLoopIterations = interp.DefaultMaxLoopIterations
	}
	if out.MaxCallDepth == 0 {
		out.MaxCallDepth = interp.DefaultMaxCallDepth
	}
	return out
}

// Validate rejects any limit configured below the documented default.
func (l Limits) Validate() error {
	if l.MaxLoopIterations < interp.DefaultMaxLoopIterations {
		return fmt.Errorf("max_loop_iterations: must be >= %d (the documented default), got %d", interp.DefaultMaxLoopIterations, l.MaxLoopIterations)
	}
	if l.MaxCallDepth < interp.DefaultMaxCallDepth {
		return fmt.Errorf("max_call_depth: must be >= %d (the documented default), got %d", interp.DefaultMaxCallDepth, l.MaxCallDepth)
	}
	return nil
}

// Config is the full configuration for a liposerver instance, normally
// loaded from a config.toml file.
type Config struct {
	// ListenAddress is the bind address, e.g. "localhost:8080".
	ListenAddress string `toml:"listen_address"`

	// TokenSecret signs issued JWTs. If not provided, FillDefaults
	// substitutes a fixed, insecure default value; no warning is logged.
	TokenSecret []byte `toml:"-"`
	TokenSecretStr string `toml:"token_secret"`

	// AdminKeyHash is the bcrypt hash of the single admin key accepted by
	// POST /api/v1/auth/token.
	AdminKeyHash string `toml:"admin_key_hash"`

	DB Database `toml:"-"`
	DBDriver    string `toml:"db_driver"`
	DBDataFile  string `toml:"db_data_file"`

	// UnauthDelayMillis throttles responses to unauthenticated/unauthorized
	// requests. Negative disables the delay.
	UnauthDelayMillis int `toml:"unauth_delay_millis"`

	Limits Limits `toml:"limits"`
}

// UnauthDelay returns the configured delay as a time.Duration.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// LoadConfig reads and parses a config.toml file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.TokenSecretStr != "" {
		cfg.TokenSecret = []byte(cfg.TokenSecretStr)
	}
	if cfg.DBDriver != "" {
		dbType, err := ParseDBType(cfg.DBDriver)
		if err != nil {
			return Config{}, fmt.Errorf("db_driver: %w", err)
		}
		cfg.DB = Database{Type: dbType, DataFile: cfg.DBDataFile}
	}

	return cfg, nil
}

// FillDefaults returns a new Config identical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.ListenAddress == "" {
		out.ListenAddress = "localhost:8080"
	}
	if out.TokenSecret == nil {
		for len(out.TokenSecret) < MinSecretSize {
			out.TokenSecret = append(out.TokenSecret, []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")...)
		}
	}
	if out.DB.Type == "" || out.DB.Type == DatabaseNone {
		out.DB = Database{Type: DatabaseInMemory}
	}
	if out.UnauthDelayMillis == 0 {
		out.UnauthDelayMillis = 1000
	}
	out.Limits = out.Limits.FillDefaults()
	return out
}

// Validate returns an error if cfg has invalid field values. Call this after
// FillDefaults.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if cfg.AdminKeyHash == "" {
		return fmt.Errorf("admin_key_hash: must be set")
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := cfg.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	return nil
}
