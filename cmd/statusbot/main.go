// cmd/statusbot/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/discord-status/internal/admin"
	"github.com/tamzrod/discord-status/internal/config"
	"github.com/tamzrod/discord-status/internal/host"
	"github.com/tamzrod/discord-status/internal/poller"
	"github.com/tamzrod/discord-status/internal/scheduler"
	"github.com/tamzrod/discord-status/internal/writer"
	"github.com/tamzrod/discord-status/internal/writer/discord"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: statusbot <config.yaml>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Stderr); err != nil {
		log.Fatalf("statusbot: %v", err)
	}
}

// run wires the pipeline and blocks until ctx ends, then shuts down in
// order: scheduler (final OFFLINE), then poller, authority and admin.
func run(ctx context.Context, cfgPath string, logOut io.Writer) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	logger := newLogger(cfg.Logging, logOut)
	slog.SetDefault(logger)

	// --------------------
	// Report identity
	// --------------------

	store, closeStore, err := writer.BuildIdentityStore(ctx, cfg, cfgPath)
	if err != nil {
		return fmt.Errorf("identity store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close identity store failed", "error", err)
		}
	}()

	if id := store.MessageID(); id != "" {
		attrs := []any{"message_id", id}
		if ca, ok := store.(interface{ CreatedAt() time.Time }); ok && !ca.CreatedAt().IsZero() {
			attrs = append(attrs, "saved", humanize.Time(ca.CreatedAt()))
		}
		logger.Info("resuming existing report", attrs...)
	} else {
		logger.Info("no report yet; first publish will create one")
	}

	// --------------------
	// Build components
	// --------------------

	dc, err := discord.New(discord.Config{
		Token:     cfg.Discord.BotToken,
		ChannelID: cfg.Discord.StatusChannelID,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	p, err := poller.Build(cfg.Minecraft, poller.WithLogger(logger))
	if err != nil {
		return err
	}

	auth := host.NewAuthority(host.NewState(time.Now(), cfg.Minecraft.FailureThreshold))
	capturer := host.NewCapturer(auth)

	pub := writer.New(dc, store, writer.BuildDisplay(cfg.ServerInfo), writer.WithLogger(logger))

	sched, err := scheduler.New(
		scheduler.Config{
			InitialDelay:    cfg.Delay(),
			Interval:        cfg.Interval(),
			ConnectTimeout:  cfg.ConnectTimeout(),
			SnapshotTimeout: cfg.SnapshotTimeout(),
			PublishTimeout:  cfg.PublishTimeout(),
		},
		dc, capturer, pub,
		scheduler.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// --------------------
	// Background services
	// --------------------

	// Detached so the scheduler can still publish OFFLINE after a signal.
	bgCtx, cancelBg := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBg()
	g, gctx := errgroup.WithContext(bgCtx)

	updates := make(chan poller.PollResult, 1)

	g.Go(func() error {
		auth.Run(gctx, updates)
		return nil
	})
	g.Go(func() error {
		p.Run(gctx, updates)
		return nil
	})
	if cfg.Admin.Listen != "" {
		srv := admin.New(capturer, sched, pub, store, logger)
		g.Go(func() error {
			if err := srv.Serve(gctx, cfg.Admin.Listen); err != nil {
				return fmt.Errorf("admin: %w", err)
			}
			return nil
		})
	}

	if err := sched.Start(); err != nil {
		cancelBg()
		_ = g.Wait()
		return err
	}
	logger.Info("statusbot started",
		"channel_id", cfg.Discord.StatusChannelID,
		"minecraft", cfg.Minecraft.Address,
		"interval", cfg.Interval())

	// --------------------
	// Wait for shutdown
	// --------------------

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case <-gctx.Done():
		logger.Error("background service failed; shutting down")
	}

	shutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout())
	defer cancel()
	sched.Stop(shutCtx)

	cancelBg()
	return g.Wait()
}

func newLogger(lc config.LoggingConfig, out io.Writer) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
