package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"geneflow_go/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Port:           a.cfg.Port,
				Log:            a.log,
				Pipeline:       orch,
				MaxUploadBytes: a.cfg.MaxUploadBytes(),
				Delimiter:      a.cfg.Comma(),
				DevMode:        a.cfg.DevMode,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port (overrides GENEFLOW_PORT)")
	return cmd
}
