package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/external-adapters/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var maxBody int64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validate, query and convert endpoints over HTTP",
		Long: `Serve the DBoM HTTP API.

  GET  /                  service metadata and endpoint list
  GET  /version           same as /
  POST /validate          validate an attestation
  POST /query             filter claims (?predicate=&purl=)
  POST /convert/spdx      convert SPDX (?validate=true&pkg=SPDXID)

The listen address comes from --addr or DBOM_ADDR, otherwise from the
port in --port, DBOM_PORT or PORT (default 8787).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, schemaID, err := a.orchestrator()
			if err != nil {
				return err
			}

			server := httpapi.NewServer(orch, schemaID,
				httpapi.WithLogger(a.logger()),
				httpapi.WithMaxBodyBytes(maxBody),
				httpapi.WithVersion(version),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, a.listenAddr())
		},
	}

	cmd.Flags().String(keyAddr, "", "Listen address, e.g. 127.0.0.1:8787")
	cmd.Flags().Int(keyPort, defaultPort, "Listen port when no address is given")
	cmd.Flags().Int64Var(&maxBody, "max-body", httpapi.DefaultMaxBodyBytes, "Maximum request body size in bytes")
	a.bindFlags(cmd, keyAddr, keyPort)
	return cmd
}
