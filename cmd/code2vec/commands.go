package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/code2vec/config"
	"github.com/c360studio/code2vec/features"
	"github.com/c360studio/code2vec/pathctx"
	pathextractor "github.com/c360studio/code2vec/processor/path-extractor"
	"github.com/c360studio/code2vec/uast"
)

func convertOptions(cfg *config.Config) uast.ConvertOptions {
	return uast.ConvertOptions{IncludeAnonymous: cfg.Extraction.IncludeAnonymous}
}

// extractionFlags override the extraction and pipeline configuration
type extractionFlags struct {
	maxLength int
	maxWidth  int
	workers   int
	include   []string
	exclude   []string
}

func (f *extractionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxLength, "max-length", 0, "Maximum path length in edges (default from config: 5)")
	cmd.Flags().IntVar(&f.maxWidth, "max-width", 0, "Maximum leaf-index span of a pair (default from config: 2)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Files extracted concurrently (default from config: 4)")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Include patterns relative to the repo (doublestar)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Exclude patterns relative to the repo (doublestar)")
}

func (f *extractionFlags) overrides() *config.Config {
	return &config.Config{
		Extraction: config.ExtractionConfig{
			MaxLength: f.maxLength,
			MaxWidth:  f.maxWidth,
		},
		Repo: config.RepoConfig{
			Include: f.include,
			Exclude: f.exclude,
		},
		Pipeline: config.PipelineConfig{
			Workers: f.workers,
		},
	}
}

func extractCmd(flags *globalFlags) *cobra.Command {
	var (
		ef     extractionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract path contexts from a repository and save the features model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)

			cfg, err := loadConfig(flags, ef.overrides(), logger)
			if err != nil {
				return err
			}
			stopMetrics := serveMetrics(cfg.Metrics.Addr, logger)
			defer stopMetrics()

			extractor, err := newExtractor(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := extractor.ExtractRepo(ctx)
			if err != nil {
				return err
			}

			model := features.NewModel(run.Documents(), features.Meta{
				ID:        run.ID,
				CreatedAt: run.StartedAt.UTC(),
				Repo:      cfg.Repo.Path,
				MaxLength: cfg.Extraction.MaxLength,
				MaxWidth:  cfg.Extraction.MaxWidth,
			})
			if err := model.Save(output); err != nil {
				return err
			}

			logger.Info("Saved features model",
				"output", output,
				"documents", len(model.PathContexts),
				"values", len(model.Value2Index),
				"paths", len(model.Path2Index),
				"failed", run.Failed)

			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d files (%d failed) into %s\n", len(run.Files), run.Failed, output)
			return nil
		},
	}

	ef.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output model file")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func watchCmd(flags *globalFlags) *cobra.Command {
	var ef extractionFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Extract a repository and re-extract files as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)

			cfg, err := loadConfig(flags, ef.overrides(), logger)
			if err != nil {
				return err
			}
			stopMetrics := serveMetrics(cfg.Metrics.Addr, logger)
			defer stopMetrics()

			extractor, err := newExtractor(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := extractor.ExtractRepo(ctx)
			if err != nil {
				return err
			}

			watcher, err := pathextractor.NewWatcher(extractor, pathextractor.WatcherConfig{
				DebounceDelay: cfg.Pipeline.Debounce,
				Logger:        logger,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Stop()

			watcher.Seed(run)
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			for event := range watcher.Events() {
				switch {
				case event.Error != nil:
					logger.Warn("Extraction failed", "path", event.Path, "error", event.Error)
				case event.Operation == pathextractor.OpDelete:
					logger.Info("File removed", "path", event.Path)
				default:
					logger.Info("Path contexts updated",
						"path", event.Path,
						"op", event.Operation,
						"contexts", event.Result.Bag.Total(),
						"distinct", event.Result.Bag.Len())
				}
			}
			return nil
		},
	}

	ef.register(cmd)
	return cmd
}

func pathsCmd(flags *globalFlags) *cobra.Command {
	var ef extractionFlags

	cmd := &cobra.Command{
		Use:   "paths FILE",
		Short: "Print the bag of path contexts of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)

			cfg, err := loadConfig(flags, ef.overrides(), logger)
			if err != nil {
				return err
			}
			extractor, err := newExtractor(cfg, logger)
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			result, err := extractor.ExtractFile(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range result.Bag.Entries() {
				fmt.Fprintf(out, "%d\t%s\n", entry.Count, entry.Context)
			}
			return nil
		},
	}

	ef.register(cmd)
	return cmd
}

func treeCmd(flags *globalFlags) *cobra.Command {
	var includeAnonymous bool

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Dump the augmented syntax tree of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)

			cfg, err := loadConfig(flags, nil, logger)
			if err != nil {
				return err
			}

			convert := convertOptions(cfg)
			convert.IncludeAnonymous = convert.IncludeAnonymous || includeAnonymous
			parser, err := uast.DefaultRegistry.ParserForFile(args[0], convert)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			root, err := parser.Parse(ctx, content)
			if err != nil {
				return err
			}
			tree, err := pathctx.Extend(root)
			if err != nil {
				return err
			}
			return tree.Dump(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&includeAnonymous, "anonymous", false, "Keep anonymous grammar tokens")
	return cmd
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump MODEL",
		Short: "Print a summary of a features model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := features.Load(args[0])
			if err != nil {
				return err
			}
			return model.Dump(cmd.OutOrStdout())
		},
	}
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default user config if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)
			return config.NewLoader(logger).EnsureUserConfig()
		},
	}
}
