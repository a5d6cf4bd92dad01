package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/httpapi"
)

// shutdownGrace bounds how long in-flight requests may finish on exit.
const shutdownGrace = 10 * time.Second

func (r *RootCommand) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the JSON API until interrupted. Requests name the acting user in
the X-User-ID header, by ID or name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				r.config.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return r.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides TT_SERVER_ADDR)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func (r *RootCommand) serve(ctx context.Context) error {
	server := httpapi.NewServer(r.runtime.API, r.runtime.Logger)
	srv := server.HTTPServer(r.config.Server.Addr, r.config.Server.ReadTimeout, r.config.Server.WriteTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	r.app.printf("Listening on %s\n", r.config.Server.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
