package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tordrt/escolamerge"
	"github.com/tordrt/escolamerge/internal/config"
	"github.com/tordrt/escolamerge/internal/formatter"
	"github.com/tordrt/escolamerge/internal/join"
)

var (
	configPath  string
	leftPath    string
	rightPath   string
	outputPath  string
	key         string
	how         string
	reportPath  string
	exportURL   string
	exportTable string
	replace     bool
	verbose     bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "escolamerge",
	Short: "Merge the school equipment and school base CSV files",
	Long: `escolamerge outer-joins two school CSV datasets on the "Escola" column,
keeps the first of any duplicate-named columns, and writes the merged CSV.

With no flags it reads build/escolas_processed_equip.csv and build/escolas.csv
and writes build/escolas_merged.csv.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: run,
}

func init() {
	bindFlags(rootCmd)
}

func bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (flags override its values)")
	cmd.Flags().StringVar(&leftPath, "left", config.DefaultLeftPath, "Left CSV file; its columns win on name clashes")
	cmd.Flags().StringVar(&rightPath, "right", config.DefaultRightPath, "Right CSV file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultOutputPath, "Merged CSV output file")
	cmd.Flags().StringVarP(&key, "key", "k", config.DefaultKey, "Join key column present in both inputs")
	cmd.Flags().StringVar(&how, "how", string(join.Outer), "Join kind: outer, inner, left or right")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a merge report to this file (.md for markdown)")
	cmd.Flags().StringVar(&exportURL, "export-db", "", "Also load the merged table into this database (postgres://, mysql://, sqlite://)")
	cmd.Flags().StringVar(&exportTable, "export-table", "", "Table name for --export-db; a dotted name such as schema.table is quoted part by part")
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop the export table before loading")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// resolveConfig applies defaults, then the config file, then flags the user set explicitly
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	overrides := []struct {
		name  string
		apply func()
	}{
		{"left", func() { cfg.Left = leftPath }},
		{"right", func() { cfg.Right = rightPath }},
		{"output", func() { cfg.Output = outputPath }},
		{"key", func() { cfg.Key = key }},
		{"how", func() { cfg.How = how }},
		{"report", func() { cfg.Report = reportPath }},
		{"export-db", func() { cfg.Export.DatabaseURL = exportURL }},
		{"export-table", func() { cfg.Export.Table = exportTable }},
		{"replace", func() { cfg.Export.Replace = replace }},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			o.apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return merge(ctx, cfg, cmd.OutOrStdout())
}

func merge(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	kind, err := join.ParseKind(cfg.How)
	if err != nil {
		return err
	}

	logger.Debug("merging",
		zap.String("left", cfg.Left),
		zap.String("right", cfg.Right),
		zap.String("output", cfg.Output),
		zap.String("key", cfg.Key),
		zap.String("how", string(kind)),
	)

	res, err := escolamerge.MergeFiles(ctx, cfg.Left, cfg.Right,
		&escolamerge.Options{Key: cfg.Key, Kind: kind},
		&escolamerge.OutputOptions{Path: cfg.Output},
	)
	if err != nil {
		return fmt.Errorf("failed to merge: %w", err)
	}

	if len(res.Dropped) > 0 {
		logger.Warn("dropped duplicate columns, kept values from the left input",
			zap.Strings("columns", res.Dropped),
			zap.String("left", cfg.Left),
		)
	}
	logger.Debug("merge stats",
		zap.Int("matched", res.Stats.Matched),
		zap.Int("left_only", res.Stats.LeftOnly),
		zap.Int("right_only", res.Stats.RightOnly),
	)

	summary := res.Summary()
	if err := formatter.NewTextFormatter(stdout).Format(summary); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}

	if cfg.Report != "" {
		if err := formatter.WriteReport(cfg.Report, summary); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Debug("report written", zap.String("path", cfg.Report))
	}

	if cfg.Export.DatabaseURL != "" {
		n, err := escolamerge.ExportResult(ctx, res, cfg.Export.DatabaseURL, cfg.Export.Table, cfg.Export.Replace)
		if err != nil {
			return err
		}
		logger.Info("exported merged table", zap.String("table", cfg.Export.Table), zap.Int("rows", n))
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
