// Command ccxtgoctl is a small operator CLI over the core: validate a spec
// file, convert a symbol, sign a sample request deterministically, and
// query the capability/classification registries. It exists for humans
// poking at a spec from a terminal, not for anything the core itself
// depends on.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:                 "ccxtgoctl",
		Usage:                "inspect and exercise compiled exchange specs",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			validateCommand,
			convertSymbolCommand,
			signCommand,
			capabilitiesCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
