package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/champs/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the championship JSON API",
	Long: `Start the HTTP API used by the classroom dashboard.

Example:
  champs serve --addr :5000 --db ./crypto_championships.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withApp(cmd, func(a *app) error {
		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		grace, err := a.cfg.Server.ParseShutdownTimeout()
		if err != nil {
			return err
		}
		if grace == 0 {
			grace = 10 * time.Second
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewServer(a.engine, a.log),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			a.log.Info("listening", "addr", addr, "db", a.cfg.Database.Path)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
