package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"answerd/internal/common/fsutil"
	"answerd/internal/config"
	"answerd/internal/engine"
	"answerd/internal/httpapi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "answerd:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "answerd",
		Short:         "Question-answering HTTP daemon over a locally hosted generative checkpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	f := root.Flags()
	f.StringVar(&configPath, "config", "", "Path to config file (.yaml/.json/.toml)")
	f.String("addr", "", "HTTP listen address, e.g. :5000")
	f.String("checkpoint", "", "Checkpoint: path (local backend) or model name (server backend)")
	f.String("backend", "", "Generation backend: local or server")
	f.String("server-url", "", "Base URL of an OpenAI-compatible inference server")
	f.Int("max-tokens", 0, "Maximum new tokens per answer")
	f.String("log-level", "", "Log level: off|error|info|debug")
	return root
}

// resolveConfig applies the precedence defaults < file < env < flags.
func resolveConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	_ = godotenv.Load() // .env is optional
	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if err := config.FromEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("env config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint, _ = flags.GetString("checkpoint")
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("server-url") {
		cfg.ServerURL, _ = flags.GetString("server-url")
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens, _ = flags.GetInt("max-tokens")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	logger := newLogger(cfg)

	ckpt := cfg.Checkpoint
	var backend engine.Backend
	switch cfg.Backend {
	case "", "local":
		p, err := fsutil.ExpandHome(ckpt)
		if err != nil {
			return err
		}
		backend = engine.NewLocalBackend(p, cfg.ContextSize, cfg.Threads)
	case "server":
		if cfg.ServerURL == "" {
			return fmt.Errorf("server backend requires server_url")
		}
		backend = engine.NewServerBackend(cfg.ServerURL, cfg.APIKey, ckpt)
	default:
		return fmt.Errorf("unknown backend %q (want local or server)", cfg.Backend)
	}

	eng := engine.New(backend, engine.Config{
		Checkpoint:    cfg.Checkpoint,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   float32(cfg.Temperature),
		TopP:          float32(cfg.TopP),
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitMS) * time.Millisecond,
		Logger:        &logger,
	})
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the checkpoint once, before accepting requests.
	if err := eng.Warmup(ctx); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetAnswerTimeoutSeconds(cfg.AnswerTimeoutS)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(eng)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("backend", backend.Kind()).
			Str("checkpoint", cfg.Checkpoint).
			Bool("llama_built", engine.LocalBuilt()).
			Msg("answerd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancel() // cancels in-flight generations joined to the base context
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	var lvl zerolog.Level
	switch cfg.LogLevel {
	case "off":
		lvl = zerolog.Disabled
	default:
		var err error
		lvl, err = zerolog.ParseLevel(cfg.LogLevel)
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
	}
	var w io.Writer = os.Stderr
	if cfg.PrettyLog {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
