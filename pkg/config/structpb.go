package config

import (
	"flag"
	"fmt"
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

// skippedConfigFlags is the list of command line flags that are not expected to have a config entry.
var skippedConfigFlags = []string{"print_version", "config_file"}

// parseConfig decodes `configBytes` as protojson or prototext depending on the extension of `path`.
func parseConfig(path string, configBytes []byte) (*structpb.Struct, error) {
	conf := new(structpb.Struct)
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = protojson.Unmarshal(configBytes, conf)
	case ".txtpb", ".textproto":
		err = prototext.Unmarshal(configBytes, conf)
	default:
		return nil, fmt.Errorf("unsupported config file extension '%s'", ext)
	}
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// protobufValueToString converts a protobuf struct value to its string representation suitable for flag setting.
func protobufValueToString(value *structpb.Value) (string, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		number := kind.NumberValue
		// JSON numbers are doubles; integral ones must still parse as int flags.
		if number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			return strconv.FormatInt(int64(number), 10), nil
		}
		return strconv.FormatFloat(number, 'g', -1, 64), nil
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NullValue:
		return "", fmt.Errorf("null values are not supported")
	case *structpb.Value_ListValue:
		return "", fmt.Errorf("lists are not supported")
	default:
		return "", fmt.Errorf("unsupported value kind %T", kind)
	}
}

// collectFlags flattens the config entries into `flags`. Nested structs are prefixed with their key and '_'.
func collectFlags(flags map[ /*flagName*/ string] /*flagValue*/ string, prefix string, conf *structpb.Struct) error {
	fields := conf.GetFields()
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		flagName := key
		if prefix != "" {
			flagName = prefix + "_" + key
		}
		value := fields[key]
		if nested, isStruct := value.GetKind().(*structpb.Value_StructValue); isStruct {
			if err := collectFlags(flags, flagName, nested.StructValue); err != nil {
				return err
			}
			continue
		}
		stringValue, err := protobufValueToString(value)
		if err != nil {
			return fmt.Errorf("failed to convert '%s': %w", flagName, err)
		}
		// {"log_level": ...} and {"log": {"level": ...}} both land on the same flag.
		if _, alreadyExists := flags[flagName]; alreadyExists {
			return fmt.Errorf("flag '%s' has multiple entries in config", flagName)
		}
		flags[flagName] = stringValue
	}
	return nil
}

// setConfigFlags sets all the filled flags in the given `conf` to the global flag variables, except the ones in
// `skipped` which were already set on the command line.
func setConfigFlags(conf *structpb.Struct, skipped map[ /*flagName*/ string]struct{}) error {
	configFlags := make(map[ /*flagName*/ string] /*flagValue*/ string)
	if err := collectFlags(configFlags, "" /*prefix*/, conf); err != nil {
		return fmt.Errorf("failed to collect flags: %w", err)
	}
	for _, flagName := range slices.Sorted(maps.Keys(configFlags)) {
		if _, isSkipped := skipped[flagName]; isSkipped {
			continue
		}
		if setErr := flag.Set(flagName, configFlags[flagName]); setErr != nil {
			return fmt.Errorf("failed to set flag %s: %w", flagName, setErr)
		}
	}
	return nil
}

// CollectUnknownConfigKeys returns an error for each config entry that does not name a registered flag.
func CollectUnknownConfigKeys(conf *structpb.Struct) []error {
	configFlags := make(map[ /*flagName*/ string] /*flagValue*/ string)
	if err := collectFlags(configFlags, "" /*prefix*/, conf); err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	for _, flagName := range slices.Sorted(maps.Keys(configFlags)) {
		if flag.Lookup(flagName) == nil || slices.Contains(skippedConfigFlags, flagName) {
			errs = append(errs, fmt.Errorf("config entry '%s' does not name a configurable flag", flagName))
		}
	}
	return errs
}

// CollectUnregisteredFlags collects all flags that have no entry in the given config.
// An error exists in the results corresponding to each unregistered flag.
func CollectUnregisteredFlags(conf *structpb.Struct) []error {
	configFlags := make(map[ /*flagName*/ string] /*flagValue*/ string)
	if err := collectFlags(configFlags, "" /*prefix*/, conf); err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	flag.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") { // Skip test flags.
			return
		}
		if slices.Contains(skippedConfigFlags, f.Name) {
			return
		}
		if _, flagHasConfigEntry := configFlags[f.Name]; !flagHasConfigEntry {
			errs = append(errs, fmt.Errorf("flag '%s' has not been defined in config", f.Name))
		}
	})
	return errs
}
