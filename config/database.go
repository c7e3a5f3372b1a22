package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeMySQL      DatabaseType = "mysql"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType
	SQLite   SQLiteConfig
	Postgres PostgresConfig
	MySQL    MySQLConfig
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	TimeZone string
}

// MySQLConfig holds MySQL specific configuration
type MySQLConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypeSQLite:
		return c.SQLite.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	case DatabaseTypePostgreSQL:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			c.Postgres.Host,
			c.Postgres.Username,
			c.Postgres.Password,
			c.Postgres.Database,
			c.Postgres.Port,
			c.Postgres.SSLMode,
			c.Postgres.TimeZone,
		)
	case DatabaseTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.MySQL.Username,
			c.MySQL.Password,
			c.MySQL.Host,
			c.MySQL.Port,
			c.MySQL.Database,
		)
	default:
		return c.SQLite.Path
	}
}

// GetDatabaseConfig builds the database configuration from DB_* variables.
// Without DB_TYPE the engine is MySQL when DB_HOST is set and SQLite otherwise.
func GetDatabaseConfig() (*DatabaseConfig, error) {
	cfg := GetDefaultDatabaseConfig()

	dbType := DatabaseType(os.Getenv("DB_TYPE"))
	if dbType == "" {
		if os.Getenv("DB_HOST") != "" {
			dbType = DatabaseTypeMySQL
		} else {
			dbType = DatabaseTypeSQLite
		}
	}
	cfg.Type = dbType

	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.SQLite.Path = path
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	port, err := getInt("DB_PORT", 0)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case DatabaseTypePostgreSQL:
		setIfNotEmpty(&cfg.Postgres.Host, host)
		setIfNotEmpty(&cfg.Postgres.Username, user)
		setIfNotEmpty(&cfg.Postgres.Password, pass)
		setIfNotEmpty(&cfg.Postgres.Database, dbName)
		setIfNotEmpty(&cfg.Postgres.SSLMode, os.Getenv("DB_SSLMODE"))
		if port > 0 {
			cfg.Postgres.Port = port
		}
	case DatabaseTypeMySQL:
		setIfNotEmpty(&cfg.MySQL.Host, host)
		setIfNotEmpty(&cfg.MySQL.Username, user)
		setIfNotEmpty(&cfg.MySQL.Password, pass)
		setIfNotEmpty(&cfg.MySQL.Database, dbName)
		if port > 0 {
			cfg.MySQL.Port = port
		}
	}
	return cfg, nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// GetDefaultDatabaseConfig returns default database configuration
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: getDefaultSQLitePath(),
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "taskpanel",
			Username: "taskpanel",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		MySQL: MySQLConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "taskpanel",
			Username: "root",
		},
	}
}

// getDefaultSQLitePath returns the default SQLite database path
func getDefaultSQLitePath() string {
	if IsDebug() {
		return "db/taskpanel.db"
	}
	return "/etc/taskpanel/taskpanel.db"
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.Host == "" {
			return fmt.Errorf("PostgreSQL host cannot be empty")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("PostgreSQL database name cannot be empty")
		}
		if c.Postgres.Username == "" {
			return fmt.Errorf("PostgreSQL username cannot be empty")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			return fmt.Errorf("PostgreSQL port must be between 1 and 65535")
		}
	case DatabaseTypeMySQL:
		if c.MySQL.Host == "" {
			return fmt.Errorf("MySQL host cannot be empty")
		}
		if c.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name cannot be empty")
		}
		if c.MySQL.Port <= 0 || c.MySQL.Port > 65535 {
			return fmt.Errorf("MySQL port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
