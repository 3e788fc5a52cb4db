package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Ambulance dispatch service.

Usage:
  dispatch [--config-path=<path>]

Options:
  --config-path   Path to the config yaml file (default "config.yaml")
  --help          Show this message

Every config value can also be set through environment variables, for
example SERVER_PORT or DATABASE_HOST. Environment variables win over
values from the file.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
