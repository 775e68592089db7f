package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// DataFilepath is the filepath to the historic market data.
	DataFilepath string
	// PipelineFilepath is the filepath to the yaml pipeline definition.
	PipelineFilepath string
	// Digits is the precision stop levels are rounded to.
	Digits int
	// SignalBars limits extracted signals to the most recent bars.
	SignalBars int
	// Interval is the period the pipeline is rerun at, e.g. 5m.
	Interval string
	// Backtest is the backtesting flag.
	Backtest bool
	// DatabaseEndpoint is the rqlite endpoint signals are persisted to.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// MetricsAddr is the address pipeline metrics are served on.
	MetricsAddr string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if cfg.Digits < 0 {
		errs = errors.Join(errs, fmt.Errorf("digits cannot be negative"))
	}
	if cfg.SignalBars < 0 {
		errs = errors.Join(errs, fmt.Errorf("signal bars cannot be negative"))
	}

	interval, err := cfg.ParseInterval()
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.Backtest && interval > 0 {
		errs = errors.Join(errs, fmt.Errorf("backtests cannot be scheduled at an interval"))
	}
	if cfg.DatabaseUser != "" && cfg.DatabaseEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("database user provided without a database endpoint"))
	}

	return errs
}

// ParseInterval returns the configured rerun interval, zero when unset.
func (cfg *Config) ParseInterval() (time.Duration, error) {
	if cfg.Interval == "" {
		return 0, nil
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return 0, fmt.Errorf("parsing interval: %w", err)
	}
	if interval < 0 {
		return 0, fmt.Errorf("interval cannot be negative")
	}

	return interval, nil
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("datafilepath", &cfg.DataFilepath, "the historic data filepath")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("pipelinefilepath", &cfg.PipelineFilepath, "the yaml pipeline filepath")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("digits", &cfg.Digits, "the stop level precision")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("signalbars", &cfg.SignalBars, "the number of recent bars signals are extracted from")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("interval", &cfg.Interval, "the pipeline rerun interval")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("backtest", &cfg.Backtest, "the backtest flag")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbendpoint", &cfg.DatabaseEndpoint, "the rqlite database endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbuser", &cfg.DatabaseUser, "the database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbpass", &cfg.DatabasePass, "the database user pass")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("metricsaddr", &cfg.MetricsAddr, "the metrics server address")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
