package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/utils"
)

const defaultConfigFile = "config.json"

func main() {
	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(defaultConfigFile)
	if err != nil {
		config = utils.DefaultConfig()
		if !os.IsNotExist(errors.Cause(err)) {
			fmt.Fprintf(os.Stderr, "Using default configuration: %v\n", err)
		}
	}

	// Command line flags override the file
	config.Bind(flag.CommandLine)
	flag.Parse()

	if err = run(config); err != nil {
		fmt.Fprintf(os.Stderr, "go-life: %v\n", err)
		os.Exit(1)
	}
}
