package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"varcal/internal/config"
	"varcal/internal/genotype"
	"varcal/internal/logging"
	"varcal/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gtcompare TRUTH_VCF CALLED_VCF",
	Short: "Score diploid genotype calls against a truth set",
	Long: `gtcompare reads a ground truth VCF and a caller VCF and prints, per
variant class, the genotype confusion matrix with per class precision, recall
and F1 over the sites present in both files.`,
	Version:      version.Version,
	Args:         cobra.ExactArgs(2),
	RunE:         run,
	SilenceUsage: true,
}

var flagLogLevel string

func init() {
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(flagLogLevel)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	truthPath, calledPath := args[0], args[1]

	logger.Info("reading truth variants", zap.String("path", truthPath))
	truth, err := genotype.ReadCalls(truthPath)
	if err != nil {
		return err
	}
	logger.Info("reading called variants", zap.String("path", calledPath))
	called, err := genotype.ReadCalls(calledPath)
	if err != nil {
		return err
	}

	for _, vc := range genotype.VariantClasses {
		conf := genotype.Compare(truth[vc], called[vc])
		if err := genotype.WriteReport(os.Stdout, vc, conf); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
