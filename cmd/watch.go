package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/fireteam-cli/internal/adapters/httpapi"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newWatchCmd(app *app, root *rootOptions) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live ranked triumphs, refreshed in the background",
		Long:  "Keys: r refresh, m cycle completion mode, s toggle sort, g next group, h hide completed, n load more, q quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(app.withLogger(cmd.Context()))
			defer cancel()

			eng, err := app.engine(ctx, root.sessionID(), domain.CompletionAverage)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = eng.scheduler.Run(ctx)
			}()

			err = app.watch(eng.scheduler, opts, app.cfg.View.PageSize)
			cancel()
			wg.Wait()
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

func newServeCmd(app *app, root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve ranked triumphs and upstream proxies over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(app.withLogger(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := app.engine(ctx, root.sessionID(), domain.CompletionAverage)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = app.cfg.ServeAddr
			}
			api := httpapi.NewServer(eng.client, eng.reference, eng.scheduler, app.cfg.View.PageSize)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Router(app.logger),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			return serve(ctx, cmd, srv, func(ctx context.Context) {
				_ = eng.scheduler.Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from serve.addr)")

	return cmd
}

// serve runs srv and background until ctx ends, then shuts srv down gracefully.
func serve(ctx context.Context, cmd *cobra.Command, srv *http.Server, background func(context.Context)) error {
	logger := slogx.FromContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		background(runCtx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", srv.Addr)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
