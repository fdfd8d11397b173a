package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xraph/crate/debug"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve FILE",
	Short: "Serve container diagnostics over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := makeContainer(args[0])
		if err != nil {
			return err
		}

		logger.Info("serving container diagnostics",
			zap.String("container", c.ID()),
			zap.String("addr", addr),
		)

		return http.ListenAndServe(addr, debug.NewHandler(c, logger))
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
}
