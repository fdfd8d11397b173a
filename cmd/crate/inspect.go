package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/crate"
	"github.com/xraph/crate/config"
)

var resolveAll bool

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "List the services defined in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := makeContainer(args[0])
		if err != nil {
			return err
		}

		if resolveAll {
			if _, err := c.Export(); err != nil {
				return err
			}
		}

		return printContainer(cmd.OutOrStdout(), c)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&resolveAll, "resolve", false, "resolve every service before printing")
}

func makeContainer(path string) (*crate.Container, error) {
	defs, err := config.Load(path, opts.EnvFiles...)
	if err != nil {
		return nil, err
	}

	factoryOpts := []crate.Option{crate.WithLogger(logger)}
	if opts.Verbose {
		factoryOpts = append(factoryOpts, crate.WithMiddleware(crate.LogMiddleware(logger)))
	}

	return crate.NewFactory(factoryOpts...).Make(defs), nil
}

func printContainer(w io.Writer, c *crate.Container) error {
	if _, err := fmt.Fprintf(w, "container %s\n", c.ID()); err != nil {
		return err
	}

	for _, name := range c.Services() {
		info := c.Inspect(name)

		line := fmt.Sprintf("%-24s %-12s %s", info.Name, info.Kind, info.Type)
		if len(info.Dependencies) > 0 {
			line += " <- " + strings.Join(info.Dependencies, ", ")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if err := c.Validate(); err != nil {
		_, err = fmt.Fprintf(w, "invalid: %v\n", err)

		return err
	}

	return nil
}
