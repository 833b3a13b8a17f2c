package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mpsweep/mpsweep/internal/output"
	"github.com/mpsweep/mpsweep/internal/scanner"
	"github.com/mpsweep/mpsweep/pkg/analyzer/unused"
)

func unusedCmd() *cli.Command {
	return &cli.Command{
		Name:      "unused",
		Usage:     "Report files the entry manifest never reaches",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "include-assets",
				Usage: "Report unreferenced asset files too",
			},
			&cli.StringSliceFlag{
				Name:  "essential",
				Usage: "Path exempt from reporting, relative to the root (repeatable; trailing slash for a directory)",
			},
		},
		Action: runUnused,
	}
}

func runUnused(c *cli.Context) error {
	sess, err := buildSession(c)
	if err != nil {
		return err
	}

	report := unused.Analyze(sess.root, sess.inventory, sess.graph, unused.Options{
		Essential:     append(sess.cfg.Essential, c.StringSlice("essential")...),
		IncludeAssets: c.Bool("include-assets") || sess.cfg.IncludeAssets,
	})

	formatter, err := output.NewFormatter(
		output.ParseFormat(getFormat(c, sess.cfg)), c.String("output"), sess.cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	if len(report.Unused) == 0 {
		formatter.Success("No unused files found (%d scanned, %d reached).", report.Total, report.Reached)
		return nil
	}

	byPath := make(map[string]scanner.File, len(sess.inventory))
	for _, f := range sess.inventory {
		byPath[f.Path] = f
	}
	rows := make([][]string, 0, len(report.Unused))
	var totalSize int64
	for _, rel := range report.Unused {
		f := byPath[filepath.Join(sess.root, filepath.FromSlash(rel))]
		rows = append(rows, []string{rel, f.Ext, strconv.FormatInt(f.Size, 10)})
		totalSize += f.Size
	}

	table := output.NewTable(
		fmt.Sprintf("Unused Files (%d of %d)", len(report.Unused), report.Total),
		[]string{"Path", "Ext", "Size"},
		rows,
		[]string{"Total", "", strconv.FormatInt(totalSize, 10)},
		report)
	if err := formatter.Output(table); err != nil {
		return err
	}
	formatter.Info("%d reached, %d excluded by policy", report.Reached, report.Excluded)
	return nil
}
