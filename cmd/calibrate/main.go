package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varcal/internal/calib"
	"varcal/internal/config"
	"varcal/internal/diagplot"
	"varcal/internal/fsio"
	"varcal/internal/logging"
	"varcal/internal/strata"
	"varcal/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Compute varcal LLR calibration tables",
	Long: `calibrate reads ground truth log-likelihood ratio statistics, fits a
mirrored calibration per variant stratum and writes the tables to a single
npz artifact read by the scoring pipeline.`,
	Version:      version.Version,
	RunE:         run,
	SilenceUsage: true,
}

var (
	flagGroundTruthLLRs string
	flagOutFilename     string
	flagOutPDF          string
	flagOverwrite       bool
	flagConfig          string
	flagMaxInputLLR     int
	flagNumValues       int
	flagBandwidth       float64
	flagMinDensity      float64
	flagMaxIndelLen     int
	flagGenericSeed     int64
	flagLogLevel        string
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagGroundTruthLLRs, "ground-truth-llrs", "snp_calibration_statistics.txt",
		"Ground truth LLR statistics file produced by extractllrs")
	f.StringVar(&flagOutFilename, "out-filename", "varcal_snp_calibration.npz",
		"Filename for the calibration artifact")
	f.StringVar(&flagOutPDF, "out-pdf", "",
		"Filename for calibration diagnostic plots (default: no plots)")
	f.BoolVar(&flagOverwrite, "overwrite", false,
		"Overwrite --out-filename if it exists")
	f.StringVar(&flagConfig, "config", "",
		"Optional TOML config file")
	f.IntVar(&flagMaxInputLLR, "max-input-llr", config.DefaultMaxInputLLR,
		"Maximum LLR magnitude to calibrate over")
	f.IntVar(&flagNumValues, "num-calibration-values", config.DefaultNumCalibrationValues,
		"Number of discrete calibration values to compute")
	f.Float64Var(&flagBandwidth, "smooth-bandwidth", config.DefaultSmoothBandwidth,
		"Gaussian smoothing bandwidth")
	f.Float64Var(&flagMinDensity, "min-density", config.DefaultMinDensity,
		"Minimum smoothed density at the LLR range edges; the range narrows until it is met")
	f.IntVar(&flagMaxIndelLen, "max-indel-len", 0,
		"Drop indels longer than this before calibration (0 keeps all)")
	f.Int64Var(&flagGenericSeed, "generic-seed", config.DefaultGenericSeed,
		"Seed for the generic substitution stratum downsample")
	f.StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	return calibrate(logger, cfg)
}

// applyFlags layers explicitly set flags over the file and environment
// configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("max-input-llr") {
		cfg.MaxInputLLR = flagMaxInputLLR
	}
	if set("num-calibration-values") {
		cfg.NumCalibrationValues = flagNumValues
	}
	if set("smooth-bandwidth") {
		cfg.SmoothBandwidth = flagBandwidth
	}
	if set("min-density") {
		cfg.MinDensity = flagMinDensity
	}
	if set("max-indel-len") {
		cfg.MaxIndelLen = flagMaxIndelLen
	}
	if set("generic-seed") {
		cfg.GenericSeed = flagGenericSeed
	}
	if set("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

func calibrate(logger *zap.Logger, cfg *config.Config) error {
	if err := fsio.PrepareOutput(flagOutFilename, flagOverwrite); err != nil {
		return err
	}

	logger.Info("parsing ground truth llr statistics",
		zap.String("path", flagGroundTruthLLRs), zap.Int("max_indel_len_filter", cfg.MaxIndelLen))
	llrStrata, err := strata.ExtractFile(flagGroundTruthLLRs, cfg.MaxIndelLen)
	if err != nil {
		return err
	}

	sampled := strata.AddGeneric(llrStrata, cfg.GenericSeed)
	logger.Info("pooled generic substitution stratum",
		zap.Int("sample_size", sampled), zap.Int64("seed", cfg.GenericSeed))

	maxIndelLen, err := strata.IndelCoverage(llrStrata)
	if err != nil {
		return err
	}

	var book *diagplot.Book
	if flagOutPDF != "" {
		book = diagplot.NewBook()
	}

	params := calib.Params{
		MaxInputLLR: cfg.MaxInputLLR,
		NumValues:   cfg.NumCalibrationValues,
		Bandwidth:   cfg.SmoothBandwidth,
		MinDensity:  cfg.MinDensity,
	}
	artifact := calib.NewArtifact(cfg.NumCalibrationValues, maxIndelLen)

	for _, key := range strata.SortedKeys(llrStrata) {
		observations := llrStrata[key]
		logger.Info("computing calibration",
			zap.Stringer("stratum", key), zap.Int("observations", len(observations)))

		res, err := calib.ComputeMirrored(observations, params, book != nil)
		if err != nil {
			return fmt.Errorf("stratum %s: %w", key, err)
		}
		if res.Range[1] < float64(cfg.MaxInputLLR) {
			logger.Warn("llr range narrowed to meet density floor",
				zap.Stringer("stratum", key), zap.Float64("effective_max_llr", res.Range[1]))
		}
		artifact.Add(key, res)

		if book != nil {
			if err := book.AddPage(key.String(), res.Plot); err != nil {
				return fmt.Errorf("stratum %s: %w", key, err)
			}
		}
	}

	if book != nil {
		if err := book.WriteFile(flagOutPDF); err != nil {
			return err
		}
		logger.Info("wrote calibration plots", zap.String("path", flagOutPDF))
	}

	logger.Info("saving calibration artifact",
		zap.String("path", flagOutFilename), zap.Int("strata", len(artifact.Strata)))
	return artifact.WriteFile(flagOutFilename)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
