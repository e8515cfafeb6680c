package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrsinham/roiforge/cmd/roiforge/picker"
	"github.com/mrsinham/roiforge/internal/config"
	"github.com/mrsinham/roiforge/internal/fsl"
	"github.com/mrsinham/roiforge/internal/pipeline"
	"github.com/mrsinham/roiforge/internal/roi"
)

// version is set at build time via -ldflags
var version = "dev"

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "roiforge",
	Short: "Anatomical ROI resolution and spherical mask synthesis",
	Long: `roiforge maps cluster peaks from FSL statistical reports onto
probabilistic atlas labels and turns the selected regions into reusable
spherical ROI masks in standard space.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		if logger, err = zcfg.Build(); err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		if cfgPath == "" {
			cfg = config.Default()
			return nil
		}
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	copeDir   string
	copeLabel string
	outputDir string
	idsFlag   string
	radiusStr string
	noPreview bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Parse a cope's cluster reports and print the ranked ROI summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		run := newRun()
		res, err := run.Resolve(cmd.Context(), copeDir)
		if err != nil {
			return err
		}
		if len(res.Summary) == 0 {
			fmt.Println("no ROIs found")
			return nil
		}
		fmt.Print(picker.SummaryTable(res.Summary))
		return nil
	},
}

var masksCmd = &cobra.Command{
	Use:   "masks",
	Short: "Resolve, select and synthesize spherical ROI masks for one cope",
	RunE: func(cmd *cobra.Command, args []string) error {
		run := newRun()
		res, err := run.Resolve(cmd.Context(), copeDir)
		if err != nil {
			return err
		}
		if len(res.Summary) == 0 {
			fmt.Println("no ROIs found")
			return nil
		}

		ids, radius, err := selection(res)
		if err != nil {
			return err
		}

		requests, err := roi.Select(res.Summary, ids, radius, copeLabel, outputDir)
		if err != nil {
			return err
		}
		fmt.Print(picker.OverlapWarnings(roi.Overlaps(requests)))

		if noPreview {
			run.Cfg.Masks.WritePreviews = false
		}
		results := run.Synthesize(cmd.Context(), requests)

		var failed int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Fprintf(os.Stderr, "failed: %s: %v\n", r.Request.Region, r.Err)
			case r.Artifact.Existed:
				fmt.Printf("exists:  %s\n", r.Artifact.Binarized)
			default:
				fmt.Printf("created: %s\n", r.Artifact.Binarized)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d masks failed", failed, len(results))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the roiforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("roiforge", version)
	},
}

// selection resolves the ID set and radius, interactively unless both were
// supplied as flags.
func selection(res *pipeline.Resolution) ([]int, int, error) {
	interactive := idsFlag == "" && radiusStr == ""
	if interactive {
		fmt.Print(picker.SummaryTable(res.Summary))
		sel, err := picker.Pick(res.Summary, cfg.Masks.DefaultRadiusMM)
		if err != nil {
			return nil, 0, err
		}
		return sel.IDs, sel.RadiusMM, nil
	}

	ids, err := roi.ParseIDSelection(idsFlag, len(res.Summary))
	if err != nil {
		return nil, 0, err
	}
	radius, err := roi.ParseRadius(radiusStr)
	if err != nil {
		return nil, 0, err
	}
	return ids, radius, nil
}

func newRun() *pipeline.Run {
	tools := fsl.NewTools(cfg.Masks.Template, cfg.ServiceTimeout())
	return pipeline.New(cfg, pipeline.Services{
		Transform: tools,
		Query:     tools,
		Masks:     tools,
	}, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	for _, c := range []*cobra.Command{resolveCmd, masksCmd} {
		c.Flags().StringVar(&copeDir, "cope-dir", "", "cope statistics directory holding the cluster reports (required)")
		_ = c.MarkFlagRequired("cope-dir")
	}

	masksCmd.Flags().StringVar(&copeLabel, "cope-label", "", "cope label for the output subtree (default: cope directory name)")
	masksCmd.Flags().StringVar(&outputDir, "out", ".", "output root for roi/<cope label>/ artifacts")
	masksCmd.Flags().StringVar(&idsFlag, "ids", "", `ROI IDs to build, e.g. "1,3" or "all" (skips the picker)`)
	masksCmd.Flags().StringVar(&radiusStr, "radius", "", `sphere radius, e.g. "5" or "7mm" (skips the picker)`)
	masksCmd.Flags().BoolVar(&noPreview, "no-preview", false, "skip QC preview images")

	masksCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if copeLabel == "" {
			copeLabel = filepath.Base(copeDir)
		}
	}

	rootCmd.AddCommand(resolveCmd, masksCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
