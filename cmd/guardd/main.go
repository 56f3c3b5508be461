// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/spf13/pflag"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/timelock-guard/calldatacheck"
	"github.com/offchainlabs/timelock-guard/cmd/genericconf"
	"github.com/offchainlabs/timelock-guard/cmd/guardd/api"
	"github.com/offchainlabs/timelock-guard/cmd/util"
	"github.com/offchainlabs/timelock-guard/cmd/util/confighelpers"
	"github.com/offchainlabs/timelock-guard/whitelist"
)

type GuarddConfig struct {
	Conf genericconf.ConfConfig `koanf:"conf"`

	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`

	Metrics       bool                            `koanf:"metrics"`
	MetricsServer genericconf.MetricsServerConfig `koanf:"metrics-server"`

	PProf    bool              `koanf:"pprof"`
	PprofCfg genericconf.PProf `koanf:"pprof-cfg"`

	HTTP genericconf.HTTPConfig `koanf:"http"`
	WS   genericconf.WSConfig   `koanf:"ws"`
	IPC  genericconf.IPCConfig  `koanf:"ipc"`

	OwnAddress      string `koanf:"own-address"`
	TrustedOperator string `koanf:"trusted-operator"`
	WhitelistFile   string `koanf:"whitelist-file"`
}

var DefaultGuarddConfig = GuarddConfig{
	Conf:          genericconf.ConfConfigDefault,
	FileLogging:   genericconf.DefaultFileLoggingConfig,
	LogLevel:      "INFO",
	LogType:       "plaintext",
	Metrics:       false,
	MetricsServer: genericconf.MetricsServerConfigDefault,
	PProf:         false,
	PprofCfg:      genericconf.PProfDefault,
	HTTP:          genericconf.HTTPConfigDefault,
	WS:            genericconf.WSConfigDefault,
	IPC:           genericconf.IPCConfigDefault,
}

func addFlags(f *pflag.FlagSet) {
	genericconf.ConfConfigAddOptions("conf", f)

	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.String("log-level", DefaultGuarddConfig.LogLevel, "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", DefaultGuarddConfig.LogType, "log type (plaintext or json)")

	f.Bool("metrics", DefaultGuarddConfig.Metrics, "enable metrics")
	genericconf.MetricsServerAddOptions("metrics-server", f)

	f.Bool("pprof", DefaultGuarddConfig.PProf, "enable pprof")
	genericconf.PProfAddOptions("pprof-cfg", f)

	genericconf.HTTPConfigAddOptions("http", f)
	genericconf.WSConfigAddOptions("ws", f)
	genericconf.IPCConfigAddOptions("ipc", f)

	f.String("own-address", DefaultGuarddConfig.OwnAddress, "address of the timelock executor this registry belongs to; used for self-address checks and forbidden as a check target")
	f.String("trusted-operator", DefaultGuarddConfig.TrustedOperator, "address of the trusted operator (e.g. the controlling multisig); forbidden as a check target")
	f.String("whitelist-file", DefaultGuarddConfig.WhitelistFile, "JSON whitelist definition applied at startup")
}

func parseConfig(args []string) (*GuarddConfig, error) {
	f := pflag.NewFlagSet("guardd", pflag.ContinueOnError)

	addFlags(f)

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}

	var config GuarddConfig
	if err := confighelpers.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	if config.Conf.Dump {
		if err := confighelpers.DumpConfig(k, nil); err != nil {
			return nil, err
		}
		c, err := k.Marshal(koanfjson.Parser())
		if err != nil {
			return nil, fmt.Errorf("unable to marshal config file to JSON: %w", err)
		}
		fmt.Println(string(c))
		os.Exit(0)
	}

	return &config, nil
}

func printSampleUsage(progname string) {
	fmt.Printf("\n")
	fmt.Printf("Sample usage:                  %s --own-address 0x... --trusted-operator 0x... --help \n", progname)
}

func parseAddress(name string, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s must be a hex address, got %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func mainImpl() int {
	config, err := parseConfig(os.Args[1:])
	if err != nil {
		confighelpers.PrintErrorAndExit(err, printSampleUsage)
	}

	err = genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging, genericconf.DefaultPathResolver(""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing log: %v\n", err)
		return 1
	}

	if err := util.StartMetrics(config.Metrics, config.PProf, &config.MetricsServer, &config.PprofCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error starting metrics server: %v\n", err)
		return 1
	}

	ownAddress, err := parseAddress("own-address", config.OwnAddress)
	if err != nil {
		log.Error("Invalid configuration", "err", err)
		return 1
	}
	trustedOperator, err := parseAddress("trusted-operator", config.TrustedOperator)
	if err != nil {
		log.Error("Invalid configuration", "err", err)
		return 1
	}

	registry := calldatacheck.NewRegistry(ownAddress, trustedOperator)
	validator := calldatacheck.NewValidator(registry)
	policy := whitelist.NewSelectorPolicy()
	gate := whitelist.NewGate(policy, validator)

	if config.WhitelistFile != "" {
		definition, err := whitelist.Load(config.WhitelistFile)
		if err != nil {
			log.Error("Failed to load whitelist file", "file", config.WhitelistFile, "err", err)
			return 1
		}
		if err := definition.Apply(registry, policy); err != nil {
			log.Error("Failed to apply whitelist file", "file", config.WhitelistFile, "err", err)
			return 1
		}
		log.Info("Applied whitelist file", "file", config.WhitelistFile, "entries", len(definition.Entries))
	}

	stackConf := api.DefaultStackConfig
	config.HTTP.Apply(&stackConf)
	config.WS.Apply(&stackConf)
	config.IPC.Apply(&stackConf)

	stack, err := api.NewStack(&stackConf, registry, validator, policy, gate)
	if err != nil {
		log.Error("Failed to create RPC stack", "err", err)
		return 1
	}

	if err := stack.Start(); err != nil {
		log.Error("Failed to start RPC stack", "err", err)
		return 1
	}
	defer stack.Close()

	log.Info("Timelock guard started", "ownAddress", ownAddress, "trustedOperator", trustedOperator)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	return 0
}

func main() {
	os.Exit(mainImpl())
}
