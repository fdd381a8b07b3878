package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/api"
	"github.com/gilbertordx/rhcp-chatbot/pkg/channels"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API (and the Discord bot when configured)",
		Example: "  rhcp-chatbot serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sweeper *session.Sweeper
	if app.cfg.SweepCron != "" {
		sweeper, err = session.NewSweeper(app.sessions, app.cfg.SweepCron, app.log)
		if err != nil {
			return fmt.Errorf("init session sweeper: %w", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	var discord *channels.DiscordChannel
	if app.cfg.Discord.Token != "" {
		discord, err = channels.NewDiscordChannel(app.cfg.Discord.Token, app.cfg.Discord.AllowFrom, app.pipeline, app.sessions, app.log)
		if err != nil {
			return fmt.Errorf("init discord channel: %w", err)
		}
		if err := discord.Start(ctx); err != nil {
			return fmt.Errorf("start discord channel: %w", err)
		}
		defer func() {
			if err := discord.Stop(context.Background()); err != nil {
				app.log.Warn("discord shutdown", zap.Error(err))
			}
		}()
	}

	server := api.NewServer(app.pipeline, app.sessions, app.log, app.cfg.Debug)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", app.cfg.Host, app.cfg.Port),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.log.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	app.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
