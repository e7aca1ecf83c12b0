package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ccxtgo/unified/classification"
	"github.com/ccxtgo/unified/signing"
	"github.com/ccxtgo/unified/spec"
	"github.com/ccxtgo/unified/symbol"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "load and validate a spec file",
	ArgsUsage: "--spec <path>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "spec", Required: true, Usage: "path to the spec JSON file"},
	},
	Action: func(c *cli.Context) error {
		s, err := spec.Load(c.String("spec"))
		if err != nil {
			return err
		}
		if _, err := spec.Validate(s); err != nil {
			return err
		}
		fmt.Printf("%s: valid (%d endpoints, format v%d)\n", s.ID, len(s.Endpoints), s.SpecFormatVersion)
		return nil
	},
}

var convertSymbolCommand = &cli.Command{
	Name:  "convert-symbol",
	Usage: "convert a unified symbol to or from an exchange-native symbol",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "spec", Required: true, Usage: "path to the spec JSON file"},
		&cli.StringFlag{Name: "symbol", Required: true, Usage: "the symbol to convert"},
		&cli.StringFlag{Name: "market-type", Value: "spot", Usage: "spot|margin|future|swap|option"},
		&cli.BoolFlag{Name: "reverse", Usage: "convert FROM an exchange-native symbol TO unified, instead of the default unified->exchange"},
	},
	Action: func(c *cli.Context) error {
		s, err := spec.Load(c.String("spec"))
		if err != nil {
			return err
		}
		marketType := spec.MarketType(c.String("market-type"))
		if c.Bool("reverse") {
			unified, err := symbol.FromExchangeID(c.String("symbol"), s, marketType)
			if err != nil {
				return err
			}
			fmt.Println(unified)
			return nil
		}
		exchangeID, err := symbol.ToExchangeID(c.String("symbol"), s, marketType)
		if err != nil {
			return err
		}
		fmt.Println(exchangeID)
		return nil
	},
}

var signCommand = &cli.Command{
	Name:  "sign",
	Usage: "sign a sample request against a spec's signing configuration",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "spec", Required: true, Usage: "path to the spec JSON file"},
		&cli.StringFlag{Name: "method", Value: "GET", Usage: "HTTP method"},
		&cli.StringFlag{Name: "path", Required: true, Usage: "request path"},
		&cli.StringFlag{Name: "api-key", Usage: "api key credential"},
		&cli.StringFlag{Name: "secret", Usage: "secret credential"},
		&cli.StringFlag{Name: "passphrase", Usage: "passphrase credential, if the pattern needs one"},
		&cli.BoolFlag{Name: "sandbox", Usage: "mark the credentials sandbox"},
		&cli.BoolFlag{Name: "deterministic", Usage: "fix the clock and nonce so output is reproducible across runs"},
	},
	Action: func(c *cli.Context) error {
		s, err := spec.Load(c.String("spec"))
		if err != nil {
			return err
		}

		deps := signing.Default()
		if c.Bool("deterministic") {
			deps = signing.Deps{
				Now:   func() time.Time { return time.UnixMilli(1700000000000).UTC() },
				Nonce: func() string { return "0" },
			}
		}

		req := signing.Request{
			Method:  spec.HTTPMethod(c.String("method")),
			BaseURL: apiBaseURL(s),
			Path:    c.String("path"),
		}
		creds := signing.Credentials{
			APIKey:   c.String("api-key"),
			Secret:   c.String("secret"),
			Password: c.String("passphrase"),
			Sandbox:  c.Bool("sandbox"),
		}

		signed, err := signing.Sign(s.Signing.Pattern, req, creds, s.Signing, deps, nil)
		if err != nil {
			return err
		}
		return printJSON(signed)
	},
}

var capabilitiesCommand = &cli.Command{
	Name:  "capabilities",
	Usage: "query the capability and classification registries across a directory of spec files",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "spec-dir", Required: true, Usage: "directory of *.json spec files"},
		&cli.StringFlag{Name: "method", Required: true, Usage: "capability/method name to query"},
		&cli.BoolFlag{Name: "compare", Usage: "print the full per-exchange comparison instead of just the supporting list"},
	},
	Action: func(c *cli.Context) error {
		specs, err := loadSpecDir(c.String("spec-dir"))
		if err != nil {
			return err
		}
		method := c.String("method")
		if c.Bool("compare") {
			return printJSON(classification.CompareCapability(specs, method))
		}
		return printJSON(classification.WhichSupport(specs, method))
	},
}

func loadSpecDir(dir string) ([]*spec.Spec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*spec.Spec
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		s, err := spec.Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func apiBaseURL(s *spec.Spec) string {
	base, _ := s.URLs.API.Resolve("")
	return base
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
