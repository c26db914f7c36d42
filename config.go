package thf

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings of a ThrustHistoryFile.
type Config struct {
	SearchPath   string // searched when a file is not found at its primary path
	DefaultFrame string // frame of segments which do not name one
	WorkingFrame string // frame of the returned vectors
	WarnOverlap  bool   // log overlapping segments on load
}

// DefaultConfig returns the configuration used without a configuration file.
func DefaultConfig() Config {
	return Config{DefaultFrame: DefaultFrameName, WorkingFrame: DefaultFrameName, WarnOverlap: true}
}

// LoadConfig reads a TOML configuration file such as:
//
//	[general]
//	search_path = "/data/thf"
//	[frames]
//	default = "EarthMJ2000Eq"
//	working = "EarthMJ2000Eq"
//	[store]
//	warn_overlap = true
//
// Missing keys keep their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("general.search_path", def.SearchPath)
	v.SetDefault("frames.default", def.DefaultFrame)
	v.SetDefault("frames.working", def.WorkingFrame)
	v.SetDefault("store.warn_overlap", def.WarnOverlap)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading configuration %s: %w", path, err)
	}
	conf := Config{
		SearchPath:   v.GetString("general.search_path"),
		DefaultFrame: v.GetString("frames.default"),
		WorkingFrame: v.GetString("frames.working"),
		WarnOverlap:  v.GetBool("store.warn_overlap"),
	}
	if conf.DefaultFrame == "" || conf.WorkingFrame == "" {
		return Config{}, fmt.Errorf("%s: frame names cannot be empty", path)
	}
	return conf, nil
}
