package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/readiness"
	httpAdapter "github.com/aretw0/readiness/internal/adapters/http"
	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated reports over HTTP",
	Long:  `Starts a read-only HTTP server exposing stage verdicts, reports, the pipeline graph and metrics.`,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		port := flagString(cmd, "port")
		g := pipeline.Default(pipeline.ResolveOutputs(flagString(cmd, "out-dir")))

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(&httpAdapter.Server{
				Store:   app.Store,
				Graph:   g,
				Metrics: app.Metrics,
				Logger:  app.Logger,
				Version: readiness.Version,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("serving reports", "addr", srv.Addr, "dir", app.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-cmd.Context().Done():
			app.Logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			return nil
		}
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("out-dir", defaultOutDir, "Directory holding the generated reports")
}
