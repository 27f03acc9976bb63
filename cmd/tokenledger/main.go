package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenledger/tokenledger/pkg/config"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "tokenledger",
		Short:   "tokenledger — reconcile benchmark model names against pricing catalogs",
		Version: version,
	}

	root.AddCommand(
		newSeedCmd(),
		newLedgerCmd(),
		newRefreshCmd(),
		newLoadCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns defaults, or the parsed config file when a path was
// given.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// orDefault substitutes a config value for an unset flag.
func orDefault(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
