package main

import (
	"fmt"
	"os"

	"gostatcheck/app"
	"gostatcheck/domain/assumptions"
	"gostatcheck/internal/errors"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(errors.ExitCode(err))
	}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	file    string
	sheet   string
	format  string
	out     string
	columns []string
	envFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "statcheck",
		Short: "Check normality, homogeneity of variance and multicollinearity of tabular data",
		Long: `statcheck runs classical assumption checks over the columns of an .xlsx or .csv file.

Settings come from STATCHECK_* environment variables (optionally loaded from
a .env file) and are overridden by flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.file, "file", "f", "", "Input .xlsx or .csv file (STATCHECK_INPUT_FILE)")
	pf.StringVar(&flags.sheet, "sheet", "", "Worksheet to read from .xlsx input (STATCHECK_SHEET)")
	pf.StringVar(&flags.format, "format", "", "Output format: text|markdown|html|json|xlsx (STATCHECK_OUTPUT_FORMAT)")
	pf.StringVarP(&flags.out, "out", "o", "", "Write output to this file instead of stdout (STATCHECK_OUTPUT_FILE)")
	pf.StringSliceVar(&flags.columns, "columns", nil, "Only check these columns (comma separated)")
	pf.StringVar(&flags.envFile, "env-file", "", "Load environment variables from this file instead of ./.env")

	rootCmd.AddCommand(
		newNormalityCmd(flags),
		newHomogeneityCmd(flags),
		newMulticollinearityCmd(flags),
		newAllCmd(flags),
	)
	return rootCmd
}

func newNormalityCmd(flags *globalFlags) *cobra.Command {
	var alpha float64
	var sortBy string

	cmd := &cobra.Command{
		Use:   "normality",
		Short: "Shapiro-Wilk test of every column",
		Long: `Run the Shapiro-Wilk normality test on every selected column.

A column passes when its p-value is greater than --alpha. Rows are sorted
ascending by --sort-by: p-value (default), Statistics, Normality or Feature.

Example: statcheck normality --file data.xlsx --sort-by Feature`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, flags)
			if err != nil {
				return err
			}
			cfg := r.container.Config.Checks
			report, err := r.container.Assumptions.CheckNormality(cmd.Context(), r.table, app.NormalityOptions{
				Alpha:  cfg.NormalityAlpha,
				SortBy: cfg.SortBy,
			})
			if err != nil {
				return errors.Wrap(err, "normality check")
			}
			return r.emit(cmd, report)
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", assumptions.DefaultAlpha, "Significance threshold (STATCHECK_NORMALITY_ALPHA)")
	cmd.Flags().StringVar(&sortBy, "sort-by", string(assumptions.SortByPValue), "Sort key: p-value|Statistics|Normality|Feature (STATCHECK_SORT_BY)")
	return cmd
}

func newHomogeneityCmd(flags *globalFlags) *cobra.Command {
	var alpha float64
	var group, center string

	cmd := &cobra.Command{
		Use:   "homogeneity",
		Short: "Levene test of equal variances across groups",
		Long: `Run Levene's test for every column except the grouping column.

Each feature is split by the distinct values of --group. A feature is
homogeneous when its p-value is greater than --alpha.

Example: statcheck homogeneity --file data.csv --group region --center median`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, flags)
			if err != nil {
				return err
			}
			cfg := r.container.Config.Checks
			if cfg.GroupColumn == "" {
				return errors.InvalidInput("a grouping column is required (--group or STATCHECK_GROUP_COLUMN)")
			}
			report, err := r.container.Assumptions.CheckHomogeneity(cmd.Context(), r.table, cfg.GroupColumn, app.HomogeneityOptions{
				Alpha:  cfg.HomogeneityAlpha,
				Center: cfg.Center,
			})
			if err != nil {
				return errors.Wrap(err, "homogeneity check")
			}
			return r.emit(cmd, report)
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", assumptions.DefaultAlpha, "Significance threshold (STATCHECK_HOMOGENEITY_ALPHA)")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Grouping column (STATCHECK_GROUP_COLUMN)")
	cmd.Flags().StringVar(&center, "center", string(assumptions.CenterMedian), "Levene center: median|mean|trimmed (STATCHECK_LEVENE_CENTER)")
	return cmd
}

func newMulticollinearityCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multicollinearity",
		Short: "Variance inflation factors of every column",
		Long: `Add a constant column and report the variance inflation factor of each column.

Levels: 1 no multicollinearity, below 5 moderate, below 10 high, otherwise
significant. Perfectly collinear columns report inf.

Example: statcheck multicollinearity --file data.xlsx --columns x1,x2,x3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, flags)
			if err != nil {
				return err
			}
			report, err := r.container.Assumptions.CheckMulticollinearity(cmd.Context(), r.table)
			if err != nil {
				return errors.Wrap(err, "multicollinearity check")
			}
			return r.emit(cmd, report)
		},
	}
	return cmd
}

func newAllCmd(flags *globalFlags) *cobra.Command {
	var alpha float64
	var group, center, sortBy string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every applicable check",
		Long: `Run normality and multicollinearity checks on every feature and, when a
grouping column is given, homogeneity of variance across its groups. The
grouping column itself is not treated as a feature.

Example: statcheck all --file data.xlsx --group segment --format xlsx --out report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, flags)
			if err != nil {
				return err
			}
			cfg := r.container.Config.Checks
			reports, err := r.container.Assumptions.CheckAll(cmd.Context(), r.table, app.SuiteOptions{
				GroupColumn: cfg.GroupColumn,
				Normality:   app.NormalityOptions{Alpha: cfg.NormalityAlpha, SortBy: cfg.SortBy},
				Homogeneity: app.HomogeneityOptions{Alpha: cfg.HomogeneityAlpha, Center: cfg.Center},
			})
			if err != nil {
				return errors.Wrap(err, "assumption checks")
			}
			return r.emit(cmd, reports...)
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", assumptions.DefaultAlpha, "Significance threshold for every test")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Grouping column for homogeneity (STATCHECK_GROUP_COLUMN)")
	cmd.Flags().StringVar(&center, "center", string(assumptions.CenterMedian), "Levene center: median|mean|trimmed")
	cmd.Flags().StringVar(&sortBy, "sort-by", string(assumptions.SortByPValue), "Normality sort key")
	return cmd
}
