package mysql

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/agentgov/governor/pkg/component"
)

var _ component.ConfigOptions = (*Options)(nil)

// redactedPassword is the placeholder used when printing options.
const redactedPassword = "[REDACTED]"

// Options defines configuration options for MySQL.
type Options struct {
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
	MaxIdleTime           time.Duration `json:"max-idle-time" mapstructure:"max-idle-time"`
	LogLevel              int           `json:"log-level" mapstructure:"log-level"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Host:                  "127.0.0.1",
		Port:                  3306,
		Username:              "root",
		Password:              "",
		Database:              "governor",
		MaxIdleConnections:    20,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 3600 * time.Second,
		MaxIdleTime:           600 * time.Second,
		LogLevel:              1, // Silent
	}
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}
	return fmt.Sprintf("MySQL{host=%s, port=%d, user=%s, password=%s, database=%s}",
		o.Host, o.Port, o.Username, password, o.Database)
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	if o.Password == "" {
		o.Password = os.Getenv("MYSQL_PASSWORD")
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Host == "" {
		return fmt.Errorf("mysql host is required")
	}
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("mysql port must be between 1 and 65535")
	}
	if o.Database == "" {
		return fmt.Errorf("mysql database is required")
	}
	if o.Username == "" {
		return fmt.Errorf("mysql username is required")
	}
	return nil
}

// AddFlags adds flags for MySQL options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Host, namePrefix+"host", o.Host, "MySQL host")
	fs.IntVar(&o.Port, namePrefix+"port", o.Port, "MySQL port")
	fs.StringVar(&o.Username, namePrefix+"username", o.Username, "MySQL username")
	fs.StringVar(&o.Password, namePrefix+"password", o.Password, "MySQL password (prefer MYSQL_PASSWORD env)")
	fs.StringVar(&o.Database, namePrefix+"database", o.Database, "MySQL database name")
	fs.IntVar(&o.MaxIdleConnections, namePrefix+"max-idle-connections", o.MaxIdleConnections, "Maximum idle connections")
	fs.IntVar(&o.MaxOpenConnections, namePrefix+"max-open-connections", o.MaxOpenConnections, "Maximum open connections")
	fs.DurationVar(&o.MaxConnectionLifeTime, namePrefix+"max-connection-life-time", o.MaxConnectionLifeTime, "Maximum connection life time")
	fs.IntVar(&o.LogLevel, namePrefix+"log-level", o.LogLevel, "GORM log level (1 silent, 2 error, 3 warn, 4 info)")
}
