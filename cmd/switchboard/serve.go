package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"switchboard/internal/agent"
	"switchboard/internal/config"
	"switchboard/internal/db"
	"switchboard/internal/gateway"
	"switchboard/internal/history"
	"switchboard/internal/llm"
	"switchboard/internal/router"
	"switchboard/internal/tool"
	"switchboard/internal/tools"
	"switchboard/internal/trace"

	"github.com/spf13/cobra"
)

var (
	serveConfig string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(serveConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serveAddr != "" {
			cfg.Gateway.Addr = serveAddr
		}

		if cfg.Trace.Enabled {
			shutdown, err := trace.Init(ctx, trace.Config{
				Endpoint: cfg.Trace.Endpoint,
				URLPath:  cfg.Trace.URLPath,
				APIKey:   cfg.Trace.APIKey,
			})
			if err != nil {
				return fmt.Errorf("initializing tracing: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					slog.Error("trace shutdown failed", "error", err)
				}
			}()
			slog.Info("tracing enabled", "endpoint", cfg.Trace.Endpoint)
		}

		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		store := history.NewStore(database)

		providers := make(map[string]*llm.OpenAIProvider, len(cfg.LLMs))
		for name, lc := range cfg.LLMs {
			providers[name] = llm.NewOpenAI(lc.BaseURL, lc.APIKey, lc.Model, lc.Timeout.Duration)
		}
		provider := providers[cfg.DefaultLLM]

		registry, err := buildRegistry(cfg)
		if err != nil {
			return fmt.Errorf("building tool registry: %w", err)
		}

		profiles := make(map[string]*agent.Profile, len(cfg.Agents))
		for name, ac := range cfg.Agents {
			profiles[name] = &agent.Profile{
				Name:             name,
				Description:      ac.Description,
				SystemPrompt:     ac.SystemPrompt,
				Tools:            ac.Tools,
				MaxIterations:    ac.MaxIterations,
				MaxExecutionTime: ac.MaxExecutionTime.Duration,
				MemoryWindow:     ac.MemoryWindow,
			}
		}

		// A profile naming a tool that did not get registered (disabled
		// flag, missing API key) still runs, just without that tool.
		for name, p := range profiles {
			for _, tn := range p.Tools {
				if _, ok := registry.Get(tn); !ok {
					slog.Warn("agent references a tool that is not enabled", "agent", name, "tool", tn)
				}
			}
		}

		factory := agent.NewFactory(provider, registry, store, profiles)

		rtr, err := router.New(factory, providers[cfg.Router.LLM], cfg.DefaultAgent, cfg.Router.Chaining, cfg.Router.CacheSize)
		if err != nil {
			return fmt.Errorf("building router: %w", err)
		}
		orch := router.NewOrchestrator(rtr, factory, store)

		srv := gateway.NewServer(orch, store, cfg.Gateway.Token, provider.Model())
		slog.Info("starting gateway",
			"addr", cfg.Gateway.Addr,
			"agents", factory.Profiles(),
			"tools", registry.Names(),
		)
		return srv.ListenAndServe(ctx, cfg.Gateway.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "path to config file")
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "override gateway listen address")
}

func buildRegistry(cfg *config.Config) (*tool.Registry, error) {
	registry := tool.NewRegistry()

	if err := registry.Register(tools.Calculator()); err != nil {
		return nil, err
	}
	if cfg.Tools.EnableSearch && cfg.Services.Brave.APIKey != "" {
		search, err := tools.Search(cfg.Services.Brave.APIKey)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(search); err != nil {
			return nil, err
		}
	}
	if cfg.Tools.EnableCode {
		if err := registry.Register(tools.CodeExec(cfg.Tools.CodeTimeout.Duration)); err != nil {
			return nil, err
		}
	}
	if cfg.Tools.EnableFiles {
		if err := registry.Register(tools.FileRead(cfg.Tools.FileRoot)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
