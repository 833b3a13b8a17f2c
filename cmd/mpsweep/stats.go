package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mpsweep/mpsweep/internal/output"
	"github.com/mpsweep/mpsweep/pkg/graph"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Summarize the dependency graph: node/edge breakdown, cycles, hubs",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Number of hub modules to list by PageRank",
			},
		},
		Action: runStats,
	}
}

func runStats(c *cli.Context) error {
	sess, err := buildSession(c)
	if err != nil {
		return err
	}

	stats := graph.CalculateStats(sess.graph, c.Int("top"))

	formatter, err := output.NewFormatter(
		output.ParseFormat(getFormat(c, sess.cfg)), c.String("output"), sess.cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(stats)
	}

	summary := output.NewTable("Project Graph",
		[]string{"Metric", "Value"},
		[][]string{
			{"Nodes", strconv.Itoa(stats.TotalNodes)},
			{"Edges", strconv.Itoa(stats.TotalEdges)},
			{"Connected components", strconv.Itoa(stats.Components)},
			{"Cycles", strconv.Itoa(len(stats.Cycles))},
		},
		nil, stats)
	if err := formatter.Output(summary); err != nil {
		return err
	}

	if len(stats.Hubs) > 0 {
		rows := make([][]string, 0, len(stats.Hubs))
		for _, hub := range stats.Hubs {
			rows = append(rows, []string{
				hub.Label,
				fmt.Sprintf("%.4f", hub.PageRank),
				strconv.Itoa(hub.InDegree),
			})
		}
		hubs := output.NewTable("Top Modules by PageRank",
			[]string{"Module", "PageRank", "In-Degree"}, rows, nil, stats.Hubs)
		if err := formatter.Output(hubs); err != nil {
			return err
		}
	}

	for i, cycle := range stats.Cycles {
		if i == 0 {
			formatter.Warning("Dependency cycles:")
		}
		fmt.Fprintf(formatter.Writer(), "  %s\n", strings.Join(cycle, " -> "))
	}
	return nil
}
