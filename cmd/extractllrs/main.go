package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varcal/internal/config"
	"varcal/internal/fsio"
	"varcal/internal/genotype"
	"varcal/internal/logging"
	"varcal/internal/truthdb"
	"varcal/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "extractllrs",
	Short: "Export ground truth LLR statistics for calibration",
	Long: `extractllrs joins the per-read variant calls recorded during a
validation run against known genotypes and writes the labeled LLR statistics
file consumed by calibrate. Only reads over homozygous sites carry usable
per-read truth; het sites and sites missing from the truth set are skipped.`,
	Version:      version.Version,
	RunE:         run,
	SilenceUsage: true,
}

var (
	flagPerReadCalls string
	flagGroundTruth  string
	flagOutFilename  string
	flagOverwrite    bool
	flagLogLevel     string
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagPerReadCalls, "per-read-calls", "",
		"SQLite database of per-read variant calls (required)")
	f.StringVar(&flagGroundTruth, "ground-truth", "",
		"VCF of known genotypes over the validation sample (required)")
	f.StringVar(&flagOutFilename, "out-filename", "snp_calibration_statistics.txt",
		"Filename for the LLR statistics output")
	f.BoolVar(&flagOverwrite, "overwrite", false,
		"Overwrite --out-filename if it exists")
	f.StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	_ = rootCmd.MarkFlagRequired("per-read-calls")
	_ = rootCmd.MarkFlagRequired("ground-truth")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(flagLogLevel)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	if err := fsio.PrepareOutput(flagOutFilename, flagOverwrite); err != nil {
		return err
	}
	// Opening a path that does not exist would create an empty database.
	if _, err := os.Stat(flagPerReadCalls); err != nil {
		return fmt.Errorf("per-read calls database: %w", err)
	}

	logger.Info("reading truth variants", zap.String("path", flagGroundTruth))
	truthSet, err := genotype.ReadCalls(flagGroundTruth)
	if err != nil {
		return err
	}
	truth := truthSet.Flatten()

	db, err := truthdb.Open(flagPerReadCalls)
	if err != nil {
		return err
	}
	defer db.Close()

	total, err := db.CountCalls()
	if err != nil {
		return err
	}
	logger.Info("labeling per-read calls",
		zap.String("path", flagPerReadCalls), zap.Int("calls", total), zap.Int("truth_sites", len(truth)))

	out, err := os.Create(flagOutFilename)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	written, skipped, err := db.WriteGroundTruth(out, truth)
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Info("wrote ground truth llr statistics",
		zap.String("path", flagOutFilename), zap.Int("records", written), zap.Int("skipped", skipped))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
