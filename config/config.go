package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LogFile        string `toml:"LogFile"`  // empty logs to stderr
	LogLevel       string `toml:"LogLevel"` // debug, info, warn, error
	DBPATH         string `toml:"DBPATH"`
	HistoryEnabled bool   `toml:"HistoryEnabled"`
	// octal permission string used when an output file is created
	FileMode string `toml:"FileMode"`
	// place encoded chunks before IEND instead of after it
	BeforeIEND bool   `toml:"BeforeIEND"`
	ServerAddr string `toml:"ServerAddr"`
}

func Default() *Config {
	return &Config{
		LogLevel:       "info",
		DBPATH:         "pngme.db",
		HistoryEnabled: true,
		FileMode:       "0644",
		ServerAddr:     "localhost:3333",
	}
}

// LoadConfig reads fn over the defaults. A missing file is not an error.
func LoadConfig(fn string) (*Config, error) {
	if fn == "" {
		fn = "config.toml"
	}
	config := Default()
	_, err := toml.DecodeFile(fn, config)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	// if any value is empty fill with default
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.FileMode == "" {
		config.FileMode = "0644"
	}
	if config.ServerAddr == "" {
		config.ServerAddr = "localhost:3333"
	}
	if _, err := config.Perm(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Perm() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil {
		return 0, errors.New("FileMode must be an octal permission like 0644: " + err.Error())
	}
	return os.FileMode(mode).Perm(), nil
}
