// fll uses flags and a single optional config file for configuration.
// The config file holds a google.protobuf.Struct, either as JSON (.json) or as text proto (.txtpb), whose entries
// name command line flags. Nested objects are flattened with '_' so {"log": {"level": "debug"}} sets -log_level.

package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/protobuf/types/known/structpb"
)

var configFilePath = flag.String("config_file", "", "Path to the configuration file (.json or .txtpb).")

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them. Explicit command line flags win over
// config file entries.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Debug("Config file not specified. Skipping config initialization.")
		return
	}

	conf, err := LoadConfigFile(*configFilePath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Config file does not exist.", "path", *configFilePath, "error", err)
		return
	}
	if err != nil { // If the config file cannot be loaded, we skip loading and use default flag values.
		slog.Error("Failed to load config file.", "path", *configFilePath, "error", err)
		return
	}
	if err := setConfigFlags(conf, explicitFlags()); err != nil {
		slog.Error("Failed to set flags from config file.", "error", err)
		return
	}
}

// explicitFlags returns the names of the flags that were given on the command line.
func explicitFlags() map[ /*flagName*/ string]struct{} {
	explicit := make(map[string]struct{})
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = struct{}{} })
	return explicit
}

// LoadConfigFile reads and parses the config file at `path`.
func LoadConfigFile(path string) (*structpb.Struct, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf, err := parseConfig(path, configBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return conf, nil
}
