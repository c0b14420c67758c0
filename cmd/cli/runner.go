package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gostatcheck/adapters/excel"
	"gostatcheck/domain/assumptions"
	"gostatcheck/domain/core"
	"gostatcheck/domain/table"
	"gostatcheck/internal"
	"gostatcheck/internal/config"
	"gostatcheck/internal/container"
	"gostatcheck/internal/errors"

	"github.com/spf13/cobra"
)

// runner holds what every subcommand needs once flags are resolved
type runner struct {
	container *container.Container
	table     *table.Table
	runID     core.RunID
	source    string
}

// newRunner loads configuration, applies flag overrides and reads the input table
func newRunner(cmd *cobra.Command, flags *globalFlags) (*runner, error) {
	if flags.envFile != "" {
		if err := config.LoadDotEnv(flags.envFile); err != nil {
			return nil, err
		}
	} else if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, flags, cfg); err != nil {
		return nil, err
	}
	if cfg.Input.File == "" {
		return nil, errors.ConfigInvalid("an input file is required (--file or STATCHECK_INPUT_FILE)")
	}

	level, _ := internal.ParseLogLevel(cfg.Log.Level)
	logger := internal.NewLoggerTo(cmd.ErrOrStderr(), level)
	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	logger.Info("run %s: reading %s", runID, cfg.Input.File)

	tbl, err := c.DataReader().ReadTable()
	if err != nil {
		return nil, err
	}
	group := ""
	if usesGroup(cmd) {
		group = cfg.Checks.GroupColumn
	}
	if tbl, err = selectColumns(tbl, flags.columns, group); err != nil {
		return nil, errors.Wrap(err, "selecting columns")
	}

	logger.Debug("run %s: input fingerprint %s", runID, tbl.Fingerprint().Short())

	return &runner{container: c, table: tbl, runID: runID, source: cfg.Input.File}, nil
}

// applyFlags overrides configuration with the flags set on the command line
func applyFlags(cmd *cobra.Command, flags *globalFlags, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("file") {
		cfg.Input.File = flags.file
	}
	if fs.Changed("sheet") {
		cfg.Input.Sheet = flags.sheet
	}
	if fs.Changed("format") {
		cfg.Output.Format = strings.ToLower(flags.format)
	}
	if fs.Changed("out") {
		cfg.Output.File = flags.out
	}
	if fs.Lookup("group") != nil && fs.Changed("group") {
		cfg.Checks.GroupColumn, _ = fs.GetString("group")
	}
	if fs.Lookup("center") != nil && fs.Changed("center") {
		center, _ := fs.GetString("center")
		parsed, err := assumptions.ParseCenter(center)
		if err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
		cfg.Checks.Center = parsed
	}
	if fs.Lookup("sort-by") != nil && fs.Changed("sort-by") {
		sortBy, _ := fs.GetString("sort-by")
		parsed, err := assumptions.ParseSortKey(sortBy)
		if err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
		cfg.Checks.SortBy = parsed
	}
	if fs.Lookup("alpha") != nil && fs.Changed("alpha") {
		alpha, _ := fs.GetFloat64("alpha")
		switch cmd.Name() {
		case "normality":
			cfg.Checks.NormalityAlpha = alpha
		case "homogeneity":
			cfg.Checks.HomogeneityAlpha = alpha
		default:
			cfg.Checks.NormalityAlpha = alpha
			cfg.Checks.HomogeneityAlpha = alpha
		}
	}
	return cfg.Validate()
}

// usesGroup reports whether the command partitions features by a grouping column
func usesGroup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "homogeneity", "all":
		return true
	}
	return false
}

// selectColumns keeps the requested columns plus the grouping column, if any
func selectColumns(tbl *table.Table, columns []string, group string) (*table.Table, error) {
	if len(columns) == 0 {
		return tbl, nil
	}
	names := append([]string(nil), columns...)
	if group != "" && !contains(names, group) {
		names = append(names, group)
	}
	return tbl.Select(names...)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// emit renders reports to stdout or the output file, or exports a workbook
func (r *runner) emit(cmd *cobra.Command, reports ...assumptions.Tabular) error {
	out := r.container.Config.Output
	logger := r.container.Logger.With("Output")

	if out.Format == config.FormatXLSX {
		return r.container.ReportWriter.Write(out.File, excel.RunInfo{
			RunID:       r.runID,
			Source:      filepath.Base(r.source),
			Fingerprint: r.table.Fingerprint(),
			CreatedAt:   core.Now(),
		}, reports...)
	}

	renderer, err := r.container.Renderer()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, reports...); err != nil {
		return errors.Wrap(err, "rendering report")
	}

	if out.File == "" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(out.File, buf.Bytes(), 0o644); err != nil {
		return errors.IOError(fmt.Sprintf("write %s", out.File), err)
	}
	logger.Info("wrote %s report to %s", renderer.Format(), out.File)
	return nil
}
