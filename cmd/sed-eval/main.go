// Command sed-eval scores sound event detection, acoustic scene
// classification and audio tagging output against reference annotations.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jamesainslie/go-sedeval/internal/config"
	"github.com/jamesainslie/go-sedeval/internal/report"
)

// app carries state shared by every subcommand.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "sed-eval",
		Short:         "Evaluate sound event detection and classification output",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `sed-eval compares system output with reference annotations and reports
segment-based and event-based detection metrics, scene classification
accuracy, audio tagging scores and McNemar's test between two systems.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.StringSlice("labels", nil, "Class vocabulary (default: labels found in the reference)")
	pf.StringP("output", "o", "", "Write the results document to this file")
	pf.String("format", "", "Output format: text, yaml or json (default: from -o extension, else text)")
	pf.String("metrics-file", "", "Write scores as a Prometheus textfile")

	mustBind(a.v, config.KeyLogLevel, pf, "log-level")
	mustBind(a.v, config.KeyLabels, pf, "labels")

	root.AddCommand(
		newEventsCmd(a),
		newScenesCmd(a),
		newTagsCmd(a),
		newMcNemarCmd(a),
	)
	return root
}

// mustBind binds a flag to a config key. A missing flag is a programming
// error.
func mustBind(v *viper.Viper, key string, flags *pflag.FlagSet, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %q to %s: %v", name, key, err))
	}
}

func (a *app) load(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(a.v, path)
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	a.cfg = cfg
	a.logger = config.NewLogger(a.stderr, cfg.LogLevel, verbose)
	a.logger.Debug("configuration loaded", "file", path, "collar", cfg.Collar, "matching", cfg.Matching)
	return nil
}

// emit writes doc according to the output flags. The text report always goes
// to stdout unless another format was requested without a file.
func (a *app) emit(cmd *cobra.Command, doc *report.Document) error {
	flags := cmd.Flags()
	outPath, _ := flags.GetString("output")
	formatName, _ := flags.GetString("format")
	metricsPath, _ := flags.GetString("metrics-file")

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if formatName == "" && outPath != "" {
		format = report.FormatFromPath(outPath)
	}

	if outPath == "" {
		if err := report.Write(a.stdout, doc, format); err != nil {
			return err
		}
	} else {
		if err := report.WriteText(a.stdout, doc); err != nil {
			return err
		}
		if err := writeFile(outPath, doc, format); err != nil {
			return err
		}
		a.logger.Info("results written", "path", outPath, "format", format)
	}

	if metricsPath != "" {
		if err := report.WriteTextfile(metricsPath, doc); err != nil {
			return err
		}
		a.logger.Info("metrics textfile written", "path", metricsPath)
	}
	return nil
}

func writeFile(path string, doc *report.Document, format report.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.Write(f, doc, format)
}

// textOutput reports whether the text report is printed to stdout.
func textOutput(cmd *cobra.Command) bool {
	outPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	return outPath != "" || formatName == "" || formatName == string(report.FormatText)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
