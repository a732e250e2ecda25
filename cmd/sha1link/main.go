package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sha1link/internal/compare"
	"sha1link/internal/config"
	"sha1link/internal/convert"
	"sha1link/internal/errs"
	"sha1link/internal/logging"
	"sha1link/internal/progress"
	"sha1link/internal/summary"
)

type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *logrus.Logger
}

func (a *app) options() convert.Options {
	return convert.Options{
		Scheme:       a.cfg.Scheme,
		WrapperLabel: a.cfg.WrapperLabel,
		MaxFirstLine: a.cfg.MaxFirstLine,
		Log:          a.log,
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if a.verbose {
		level = logrus.DebugLevel.String()
	}
	log, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "sha1link",
		Short:             "Convert between flat link lists and tree documents",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		a.toTreeCmd(),
		a.toLinesCmd(),
		a.validateCmd(),
		a.dedupCmd(),
		a.checkDupCmd(),
		a.summaryCmd(),
		a.stripCmd(),
		a.magnetCmd(),
		a.extractCmd("extract-magnets", "Collect magnet links from a text file", convert.ExtractMagnets),
		a.extractCmd("extract-ed2k", "Collect ed2k links from a text file", convert.ExtractED2K),
		a.diffCmd(),
		a.batchCmd(),
	)
	return root
}

func printStats(w io.Writer, what string, stats convert.Stats, out string) {
	fmt.Fprintf(w, "✓ %s: %d records\n", what, stats.Records)
	if stats.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped: %d invalid lines\n", stats.Skipped)
	}
	fmt.Fprintf(w, "  Output: %s\n", out)
}

func (a *app) toTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to-tree <lines.txt> <tree.json>",
		Short: "Build a tree document from a flat link list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := convert.LinesToTree(args[0], args[1], a.options())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), "Tree written", stats, args[1])
			return nil
		},
	}
}

func (a *app) toLinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to-lines <tree.json> <lines.txt>",
		Short: "Flatten a tree document into a link list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := convert.TreeToLines(args[0], args[1], a.options())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), "Lines written", stats, args[1])
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <lines.txt>",
		Short: "Check that a file looks like a flat link list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := convert.Validate(args[0], a.options()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s looks like a link list\n", args[0])
			return nil
		},
	}
}

func (a *app) dedupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup <in.txt> <out.txt>",
		Short: "Drop duplicate records, keeping the first line of each",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := convert.Dedup(args[0], args[1], a.options())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Kept %d of %d records\n", rep.Distinct, rep.Valid)
			fmt.Fprintf(w, "  Duplicates: %d\n", rep.Duplicates)
			fmt.Fprintf(w, "  Invalid: %d\n", rep.Invalid)
			fmt.Fprintf(w, "  Output: %s\n", args[1])
			return nil
		},
	}
}

func (a *app) checkDupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-dup <lines.txt>",
		Short: "Count duplicate and invalid lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := convert.CountDuplicates(args[0], a.options())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d duplicates, %d invalid\n", rep.Duplicates, rep.Invalid)
			return nil
		},
	}
}

func (a *app) summaryCmd() *cobra.Command {
	var isTree bool

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Report count and size statistics of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   summary.Summary
				err error
			)
			if isTree {
				s, err = convert.SummarizeTree(args[0], a.options())
			} else {
				s, err = convert.SummarizeLines(args[0], a.options())
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, s.String())
			fmt.Fprintf(w, "fingerprint %s\n", s.Fingerprint)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isTree, "tree", false, "Input is a tree document")
	return cmd
}

func (a *app) stripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip <in.txt> <out.txt>",
		Short: "Rewrite a link list without directory paths",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := convert.StripDirs(args[0], args[1], a.options())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), "Lines written", stats, args[1])
			return nil
		},
	}
}

func (a *app) magnetCmd() *cobra.Command {
	var withName bool

	cmd := &cobra.Command{
		Use:   "magnet <file.torrent>",
		Short: "Print the info-hash magnet URI of a torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := convert.Torrent(args[0], a.options())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if withName && info.Name != "" {
				fmt.Fprintln(w, info.Hash.MagnetWithName(info.Name))
			} else {
				fmt.Fprintln(w, info.URI)
			}
			a.log.WithFields(logrus.Fields{
				"name":  info.Name,
				"files": info.Files,
				"size":  humanize.IBytes(info.TotalLength),
			}).Debug("parsed torrent")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withName, "name", false, "Include the display name in the URI")
	return cmd
}

func (a *app) extractCmd(use, short string, run func(in, out string) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <in.txt> <out.txt>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := run(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Found %d links\n  Output: %s\n", n, args[1])
			return nil
		},
	}
}

func (a *app) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare the records of two collections",
		Long:  "Compare two collections, each a link list or a .json tree document.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := convert.Diff(args[0], args[1], a.options())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), compare.FormatReport(result))
			return nil
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <dir> <outdir>",
		Short: "Convert every .txt and .json file under a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.Workers
			}
			w := cmd.OutOrStdout()

			jobs, walkErrs, err := convert.Plan(args[0], args[1], a.cfg.Skip)
			if err != nil {
				return err
			}
			for _, e := range walkErrs {
				a.log.WithError(e).Warn("skipping unreadable entry")
			}
			fmt.Fprintf(w, "Found %d files\n", len(jobs))

			bar := progress.New(int64(len(jobs)))
			results := convert.Batch(cmd.Context(), jobs, workers, bar, a.options())
			bar.Finish()

			var (
				failed   int
				firstErr error
			)
			for _, r := range results {
				if r.Err == nil {
					continue
				}
				failed++
				if firstErr == nil {
					firstErr = r.Err
				}
				fmt.Fprintf(w, "  ✗ %s: %v\n", r.Job.Input, r.Err)
			}
			fmt.Fprintf(w, "✓ Converted %d of %d files\n", len(results)-failed, len(results))

			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed: %w", failed, len(results), firstErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of worker goroutines (default from config)")
	return cmd
}

func errorMessage(err error) string {
	return fmt.Sprintf("Error: %v (%s)", err, errs.Kind(err))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted")
		}
		fmt.Fprintln(os.Stderr, errorMessage(err))
		stop()
		os.Exit(1)
	}
}
