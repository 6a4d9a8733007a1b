// Package main provides the code2vec binary entry point.
// code2vec extracts bounded path contexts between the leaves of source-code
// syntax trees and builds the indexed features model used to train
// code embeddings.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/code2vec/config"
	pathextractor "github.com/c360studio/code2vec/processor/path-extractor"

	// Register language parsers via init()
	_ "github.com/c360studio/code2vec/uast/golang"
	_ "github.com/c360studio/code2vec/uast/java"
	_ "github.com/c360studio/code2vec/uast/python"
	_ "github.com/c360studio/code2vec/uast/ts"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "code2vec"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath  string
	repoPath    string
	logLevel    string
	metricsAddr string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Path-context extraction for code embeddings",
		Long: `code2vec extracts path contexts from source code syntax trees.

A path context is the shortest tree path between two nearby leaves
(identifiers, literals), written as the start token, the node kinds
along the path separated by UP/DOWN markers, and the end token.

Supported languages: Go, Python, Java, TypeScript, TSX, JavaScript.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.repoPath, "repo", "", "Repository path (default: git root or current directory)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")

	cmd.AddCommand(
		extractCmd(flags),
		watchCmd(flags),
		pathsCmd(flags),
		treeCmd(flags),
		dumpCmd(),
		initCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// newLogger builds a text logger on stderr and makes it the default
func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig applies the layered config and the command-line overrides
func loadConfig(flags *globalFlags, overrides *config.Config, logger *slog.Logger) (*config.Config, error) {
	if overrides == nil {
		overrides = &config.Config{}
	}

	if flags.repoPath != "" {
		absRepoPath, err := filepath.Abs(flags.repoPath)
		if err != nil {
			return nil, fmt.Errorf("resolve repo path: %w", err)
		}
		info, err := os.Stat(absRepoPath)
		if err != nil {
			return nil, fmt.Errorf("stat repo path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", absRepoPath)
		}
		overrides.Repo.Path = absRepoPath
	}
	if flags.metricsAddr != "" {
		overrides.Metrics.Addr = flags.metricsAddr
	}

	cfg, err := config.NewLoader(logger).Load(flags.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newExtractor creates the batch extractor for a loaded config
func newExtractor(cfg *config.Config, logger *slog.Logger) (*pathextractor.Extractor, error) {
	opts, err := cfg.Extraction.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return pathextractor.NewExtractor(pathextractor.Config{
		RepoRoot:  cfg.Repo.Path,
		Include:   cfg.Repo.Include,
		Exclude:   cfg.Repo.Exclude,
		Options:   opts,
		Convert:   convertOptions(cfg),
		Workers:   cfg.Pipeline.Workers,
		CacheSize: cfg.Pipeline.CacheSize,
		Logger:    logger,
	})
}

// serveMetrics starts the prometheus endpoint when an address is configured.
// The returned function shuts the server down.
func serveMetrics(addr string, logger *slog.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
