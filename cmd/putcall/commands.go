package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/putcall/internal/config"
	"github.com/rewired-gh/putcall/internal/logger"
	"github.com/rewired-gh/putcall/internal/storage"
	"github.com/rewired-gh/putcall/internal/storage/redis"
	"github.com/rewired-gh/putcall/internal/telegram"
	"github.com/rewired-gh/putcall/internal/tracker"
	"github.com/rewired-gh/putcall/internal/web"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "putcall",
		Short:         "Track manual put/call readings and derive trade signals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			logger.Debug("Configuration loaded from %s", a.configPath)
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "configs/config.yaml", "Path to configuration file")

	root.AddCommand(
		a.serveCmd(),
		a.analyzeCmd(),
		a.resetCmd(),
		a.historyCmd(),
	)
	return root
}

type store interface {
	tracker.Store
	Close() error
}

func (a *app) openStore(ctx context.Context) (store, error) {
	sc := a.cfg.Storage
	switch sc.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "redis":
		return redis.New(ctx, redis.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
			Prefix:   sc.RedisPrefix,
			TTL:      sc.RedisTTL,
		})
	default:
		return storage.New(sc.DBPath)
	}
}

// withTracker opens the store, builds the tracker and closes the store when fn returns.
func (a *app) withTracker(ctx context.Context, fn func(*tracker.Tracker) error) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	loc, err := a.cfg.Tracker.Location()
	if err != nil {
		return err
	}
	return fn(tracker.New(s, tracker.Config{
		Key:             a.cfg.Tracker.StoreKey,
		FreshnessWindow: a.cfg.Tracker.FreshnessWindow,
		Location:        loc,
	}))
}

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze PUT CALL",
		Short: "Record one put/call reading and print the history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withTracker(ctx, func(t *tracker.Tracker) error {
				now := time.Now()
				st, err := t.Analyze(ctx, t.Restore(ctx, now), args[0], args[1], now)
				if errors.Is(err, tracker.ErrNotNumeric) {
					fmt.Fprintln(cmd.ErrOrStderr(), alertStyle.Render("Please enter valid numeric values!"))
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRows(tracker.Render(st)))
				return err
			})
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withTracker(ctx, func(t *tracker.Tracker) error {
				t.Reset(ctx, t.Restore(ctx, time.Now()))
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			})
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the persisted history if it is still fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withTracker(ctx, func(t *tracker.Tracker) error {
				fmt.Fprint(cmd.OutOrStdout(), renderRows(tracker.Render(t.Restore(ctx, time.Now()))))
				return nil
			})
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web page and/or Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Web.Enabled && !a.cfg.Telegram.Enabled {
				return errors.New("nothing to serve: enable web or telegram")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return a.withTracker(ctx, func(t *tracker.Tracker) error {
				session := tracker.NewSession(ctx, t, nil)
				logger.Info("Tracker ready with %d history entries", session.Len())

				var wg sync.WaitGroup
				if a.cfg.Telegram.Enabled {
					tc := a.cfg.Telegram
					client, err := telegram.NewClient(tc.BotToken, tc.ChatID, tc.MaxRetries, tc.RetryDelayBase, session)
					if err != nil {
						return fmt.Errorf("failed to initialize Telegram client: %w", err)
					}
					done := client.ListenForCommands(ctx)
					wg.Add(1)
					go func() {
						defer wg.Done()
						<-done
					}()
					logger.Info("Telegram bot listening for commands")
				} else {
					logger.Debug("Telegram bot disabled")
				}

				var webErr error
				if a.cfg.Web.Enabled {
					wg.Add(1)
					go func() {
						defer wg.Done()
						if webErr = web.NewServer(a.cfg.Web.ListenAddr, session).Run(ctx); webErr != nil {
							cancel()
						}
					}()
				}

				<-ctx.Done()
				logger.Info("Shutdown signal received, cleaning up...")
				wg.Wait()
				logger.Info("Service stopped")
				return webErr
			})
		},
	}
}
