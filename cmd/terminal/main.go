package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tradeterm/internal/api"
	"tradeterm/internal/auth"
	"tradeterm/internal/config"
	"tradeterm/internal/connection"
	"tradeterm/internal/feed"
	"tradeterm/internal/stream"
	"tradeterm/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/terminal.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting terminal",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tokens := auth.Env(auth.DefaultTokenEnv)
	if tokens.Token() == "" {
		logger.Warn("no auth token in environment, streaming is disabled until one appears",
			"env", auth.DefaultTokenEnv,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	rest := api.NewClient(
		cfg.API.RestURL,
		tokens,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	registry := stream.NewRegistry(logger)
	manager := connection.NewManager(connection.ManagerConfig{
		URL:               cfg.Stream.URL,
		DialTimeout:       cfg.Stream.DialTimeout,
		ReconnectBaseWait: cfg.Stream.ReconnectBaseWait,
		ReconnectMaxWait:  cfg.Stream.ReconnectMaxWait,
		BufferSize:        cfg.Stream.BufferSize,
	}, registry, tokens, logger)

	ticks := feed.NewTicks(registry, logger)
	bars := feed.NewBars(registry, logger)
	agents := feed.NewAgents(registry, logger)

	manager.OnStatusChange(func(s connection.Status) {
		logger.Info("connection status changed", "status", s)
	})

	// Hydrate historical state over REST before the live channels open, so
	// live frames land on seeded caches.
	if err := hydrate(ctx, cfg, rest, bars, agents, logger); err != nil {
		logger.Warn("hydration incomplete, continuing with live data only", "error", err)
	}

	// Open the configured feeds. Each Subscribe records intent; the frames
	// go out on connect via desired-state resend.
	for _, symbol := range cfg.Watch.Symbols {
		ticks.Subscribe(symbol)
	}
	for _, bw := range cfg.Watch.Bars {
		bars.Subscribe(bw.Symbol, bw.Timeframe)
	}
	for _, id := range cfg.Watch.Agents {
		agents.Subscribe(id)
	}

	manager.Connect()

	statusServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Status.Port),
		Handler: statusHandler(manager, registry, ticks, agents),
	}
	go func() {
		logger.Info("starting status server", "port", cfg.Status.Port)
		if err := statusServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("status server error", "error", err)
		}
	}()

	logger.Info("terminal running",
		"symbols", len(cfg.Watch.Symbols),
		"bar_feeds", len(cfg.Watch.Bars),
		"agents", len(cfg.Watch.Agents),
		"status_url", fmt.Sprintf("http://localhost:%d/status", cfg.Status.Port),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	manager.Disconnect()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	statusServer.Shutdown(shutdownCtx)

	logger.Info("terminal stopped")
}

// hydrate loads historical bars, the agent list, and the first watched
// agent's trades in parallel.
func hydrate(ctx context.Context, cfg *config.Config, rest *api.Client, bars *feed.Bars, agents *feed.Agents, logger *slog.Logger) error {
	hctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	defer cancel()

	g, hctx := errgroup.WithContext(hctx)

	for _, bw := range cfg.Watch.Bars {
		g.Go(func() error {
			history, err := rest.GetBars(hctx, bw.Symbol, bw.Timeframe, cfg.Watch.HistoryLimit)
			if err != nil {
				return fmt.Errorf("load bars %s %s: %w", bw.Symbol, bw.Timeframe, err)
			}
			bars.SetInitial(bw.Symbol, bw.Timeframe, history)
			logger.Debug("bars hydrated", "symbol", bw.Symbol, "timeframe", bw.Timeframe, "count", len(history))
			return nil
		})
	}

	g.Go(func() error {
		list, err := rest.GetAgents(hctx)
		if err != nil {
			return fmt.Errorf("load agents: %w", err)
		}
		agents.SetAgents(list)
		logger.Debug("agents hydrated", "count", len(list))

		if len(cfg.Watch.Agents) == 0 {
			return nil
		}
		selected := cfg.Watch.Agents[0]
		agents.Select(selected)

		trades, err := rest.GetAgentTrades(hctx, selected)
		if err != nil {
			return fmt.Errorf("load trades for %s: %w", selected, err)
		}
		agents.SetTrades(trades)
		logger.Debug("trades hydrated", "agent", selected, "count", len(trades))
		return nil
	})

	return g.Wait()
}

// statusHandler serves the ambient connection-status indicator.
func statusHandler(manager *connection.Manager, registry *stream.Registry, ticks *feed.Ticks, agents *feed.Agents) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			Connection      connection.Status `json:"connection"`
			DesiredChannels []string          `json:"desired_channels"`
			CachedSymbols   int               `json:"cached_symbols"`
			Agents          int               `json:"agents"`
		}{
			Connection:      manager.Status(),
			DesiredChannels: registry.Desired(),
			CachedSymbols:   len(ticks.Symbols()),
			Agents:          len(agents.List()),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	return mux
}
