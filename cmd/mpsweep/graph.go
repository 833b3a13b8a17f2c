package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mpsweep/mpsweep/internal/output"
	"github.com/mpsweep/mpsweep/pkg/graph"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Emit the dependency graph (Mermaid for text, structured for json/toon)",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "direction",
				Value: "TD",
				Usage: "Mermaid direction: TD or LR",
			},
			&cli.IntFlag{
				Name:  "max-nodes",
				Value: 100,
				Usage: "Truncate the diagram after this many nodes",
			},
			&cli.IntFlag{
				Name:  "max-edges",
				Value: 300,
				Usage: "Truncate the diagram after this many edges",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Include component, cycle, and PageRank metrics",
			},
		},
		Action: runGraph,
	}
}

func runGraph(c *cli.Context) error {
	sess, err := buildSession(c)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(
		output.ParseFormat(getFormat(c, sess.cfg)), c.String("output"), sess.cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var stats *graph.Stats
	if c.Bool("stats") {
		stats = graph.CalculateStats(sess.graph, 5)
	}

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		export := sess.graph.Export()
		if stats != nil {
			return formatter.Output(struct {
				Graph graph.Export `json:"graph" toon:"graph"`
				Stats *graph.Stats `json:"stats" toon:"stats"`
			}{export, stats})
		}
		return formatter.Output(export)
	}

	opts := graph.DefaultMermaidOptions()
	opts.Direction = c.String("direction")
	opts.MaxNodes = c.Int("max-nodes")
	opts.MaxEdges = c.Int("max-edges")

	fmt.Fprintln(formatter.Writer(), "```mermaid")
	fmt.Fprint(formatter.Writer(), sess.graph.ToMermaid(opts))
	fmt.Fprintln(formatter.Writer(), "```")

	if stats != nil {
		fmt.Fprintln(formatter.Writer())
		formatter.Info("Graph Metrics:")
		fmt.Fprintf(formatter.Writer(), "  Nodes: %d\n", stats.TotalNodes)
		fmt.Fprintf(formatter.Writer(), "  Edges: %d\n", stats.TotalEdges)
		fmt.Fprintf(formatter.Writer(), "  Components: %d\n", stats.Components)
		fmt.Fprintf(formatter.Writer(), "  Cycles: %d\n", len(stats.Cycles))
	}
	return nil
}
