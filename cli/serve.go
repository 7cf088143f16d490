package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/decktree/api"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.Log.Sync()

			if !a.Config.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			a.Registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			router := api.NewRouter(a.Service, a.Log, api.RouterOptions{
				Metrics:  a.Metrics,
				Gatherer: a.Registry,
				Health: func(c *gin.Context) error {
					return a.Health(c.Request.Context())
				},
			})

			if addr == "" {
				addr = a.Config.Server.Addr()
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.Log.Info("HTTP server listening", "addr", addr, "driver", a.DB.Driver(), "cache", a.Cache != nil)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.Log.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.host:server.port)")
	return cmd
}
