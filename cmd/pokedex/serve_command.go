package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pokedex/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Long: `Serve the HTTP API until interrupted.

Routes:
  POST /api/identify         multipart upload, field "image"
  GET  /api/resolve?label=   resolve a label without the classifier
  GET  /api/catalog          catalog status
  GET  /api/catalog/records  records, optional q and limit
  GET  /api/history          recent identifications
  GET  /metrics              Prometheus metrics
  GET  /healthz              liveness`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if _, err := store.Current(cmd.Context()); err != nil {
				logging.WarnWithContext(logger, "catalog not loaded at startup", "catalog_startup_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check catalog.path or catalog.download_url"),
					logging.String(logging.FieldImpact, "requests fail until the catalog can be loaded"),
				)
			}

			srv, err := ctx.newAPIServer(bind)
			if err != nil {
				return err
			}
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())
			<-cmd.Context().Done()
			logger.Info("api server stopping")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	return cmd
}
