package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is read from dbstatic.yaml, DBSTATIC_* variables and flags, the
// latter winning.
type Config struct {
	DBD        []string `mapstructure:"dbd"`
	Path       string   `mapstructure:"path"`
	Store      string   `mapstructure:"store"`
	Listen     string   `mapstructure:"listen"`
	History    string   `mapstructure:"history"`
	LogLevel   string   `mapstructure:"log_level"`
	LogJSON    bool     `mapstructure:"log_json"`
	PvdBuckets int      `mapstructure:"pvd_buckets"`
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dbstatic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.dbstatic")
		v.AddConfigPath("/etc/dbstatic")
	}

	// every key needs a default for AutomaticEnv to reach Unmarshal
	v.SetDefault("dbd", []string{})
	v.SetDefault("path", "")
	v.SetDefault("store", "dbstatic.db")
	v.SetDefault("listen", "")
	v.SetDefault("history", ".dbstatic_cmd_log.txt")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_json", false)
	v.SetDefault("pvd_buckets", 512)

	v.SetEnvPrefix("DBSTATIC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig merges the config file, environment and the flags that were
// set on the command line.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	for flag, key := range map[string]string{
		"dbd":         "dbd",
		"path":        "path",
		"store":       "store",
		"listen":      "listen",
		"log-level":   "log_level",
		"log-json":    "log_json",
		"pvd-buckets": "pvd_buckets",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}
