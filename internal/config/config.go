// Package config loads flowctl settings from a TOML file, with environment
// overrides for deployment. A .env file in the working directory is read
// first, if present.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the flowctl configuration.
type Config struct {
	// Listen is the address the service binds to.
	Listen string `toml:"listen" validate:"required"`
	// Remote is the base URL of a running service, used when a command reads
	// a flow by owner instead of from a file.
	Remote string      `toml:"remote" validate:"omitempty,url"`
	Store  StoreConfig `toml:"store"`
}

// StoreConfig selects where flows are kept.
type StoreConfig struct {
	Driver      string `toml:"driver" validate:"oneof=memory sqlite postgres"`
	Path        string `toml:"path" validate:"required_if=Driver sqlite"`
	DatabaseURL string `toml:"database_url" validate:"required_if=Driver postgres"`
}

var validate = newValidator()

// newValidator reports fields by their TOML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen: ":3000",
		Remote: "http://localhost:3000",
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "flows.db",
		},
	}
}

// Load reads the file at path over the defaults, then applies the
// DATABASE_URL and FLOW_LISTEN environment variables. An empty path skips
// the file. DATABASE_URL selects the postgres driver.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Store.Driver = DriverPostgres
		cfg.Store.DatabaseURL = url
	}
	if addr := os.Getenv("FLOW_LISTEN"); addr != "" {
		cfg.Listen = addr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	var errs validator.ValidationErrors
	if err := validate.Struct(c); !errors.As(err, &errs) {
		return err
	}
	fe := errs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("config: unknown store driver %q", fe.Value())
	case "required_if":
		return fmt.Errorf("config: %s store needs %s", c.Store.Driver, fe.Field())
	case "required":
		return fmt.Errorf("config: %s is required", fe.Field())
	case "url":
		return fmt.Errorf("config: %s must be a URL, got %q", fe.Field(), fe.Value())
	}
	return fmt.Errorf("config: %s fails %s", fe.Namespace(), fe.Tag())
}
