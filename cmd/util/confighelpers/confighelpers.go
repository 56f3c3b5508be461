// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

// Package confighelpers layers the configuration sources every daemon of
// this repository uses: command line flags and environment variables win
// over configuration files, which win over the raw JSON string override.
package confighelpers

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

func loadEnvironmentVariables(k *koanf.Koanf) error {
	envPrefix := k.String("conf.env-prefix")
	if envPrefix == "" {
		return nil
	}
	return k.Load(env.Provider(envPrefix+"_", ".", func(key string) string {
		// FOO_BAR_B__Z -> bar-b.z
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix+"_"))
		key = strings.ReplaceAll(key, "__", ".")
		return strings.ReplaceAll(key, "_", "-")
	}), nil)
}

func applyOverrides(f *flag.FlagSet, k *koanf.Koanf) error {
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return errors.Wrap(err, "error loading command line flags")
	}
	if err := loadEnvironmentVariables(k); err != nil {
		return errors.Wrap(err, "error loading environment variables")
	}
	return nil
}

// BeginCommonParse parses the flag set and merges every configuration
// source into one koanf instance.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if f.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", f.Args())
	}

	k := koanf.New(".")
	if err := applyOverrides(f, k); err != nil {
		return nil, err
	}

	for _, path := range k.Strings("conf.file") {
		if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error loading config file %s", path)
		}
	}
	if confString := k.String("conf.string"); confString != "" {
		if err := k.Load(rawbytes.Provider([]byte(confString)), koanfjson.Parser()); err != nil {
			return nil, errors.Wrap(err, "error loading config string")
		}
	}

	// Apply overrides one more time so flags and environment variables have
	// priority over any config file. The posflag provider skips flags left
	// at their default when the key is already present.
	if err := applyOverrides(f, k); err != nil {
		return nil, err
	}
	return k, nil
}

// EndCommonParse decodes the merged configuration into the typed config
// struct, rejecting unknown keys.
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           config,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: &decoderConfig,
	}); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	return nil
}

// DumpConfig scrubs the given fields and resets conf.dump before the caller
// marshals the active configuration for printing.
func DumpConfig(k *koanf.Koanf, extraOverrideFields map[string]interface{}) error {
	overrideFields := map[string]interface{}{"conf.dump": false}
	for key, value := range extraOverrideFields {
		overrideFields[key] = value
	}
	if err := k.Load(confmap.Provider(overrideFields, "."), nil); err != nil {
		return errors.Wrap(err, "error overriding fields for dump")
	}
	return nil
}

func PrintErrorAndExit(err error, usage func(string)) {
	if err != nil && errors.Is(err, flag.ErrHelp) {
		// pflag already printed the usage text
		os.Exit(0)
	}
	usage(os.Args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
	os.Exit(0)
}
