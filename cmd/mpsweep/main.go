package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/mpsweep/mpsweep/internal/cache"
	"github.com/mpsweep/mpsweep/internal/progress"
	"github.com/mpsweep/mpsweep/internal/scanner"
	"github.com/mpsweep/mpsweep/pkg/analyzer/structure"
	"github.com/mpsweep/mpsweep/pkg/config"
	"github.com/mpsweep/mpsweep/pkg/graph"
	"github.com/mpsweep/mpsweep/pkg/source"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:     "mpsweep",
		Usage:    "Unused-file analysis for mini program projects",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Mpsweep walks a mini program project from its entry manifest, follows
page, component, script, template, style, and resource references, and
reports files on disk that nothing reaches.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"MPSWEEP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "entry",
				Usage: "Entry manifest path, relative to the project root",
			},
			&cli.StringSliceFlag{
				Name:  "alias",
				Usage: "Import alias override as prefix=target (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Enable the extraction cache",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC()
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			unusedCmd(),
			graphCmd(),
			statsCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// session carries everything a command needs after the project walk.
type session struct {
	cfg       *config.Config
	root      string
	inventory []scanner.File
	graph     *graph.Graph
}

// buildSession loads config, scans the inventory, and runs the structural
// walk. The positional argument, when given, overrides the configured root.
func buildSession(c *cli.Context) (*session, error) {
	cfg := loadConfig(c)

	root := cfg.Root
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	logger := slog.New(slog.DiscardHandler)
	if c.Bool("verbose") || cfg.Output.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	inventory, err := scanner.New(cfg).Scan(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", absRoot, err)
	}

	tracker := progress.NewSpinner("Walking dependency graph...")
	opts := []structure.Option{
		structure.WithEntryPath(cfg.Entry),
		structure.WithAliasOverrides(mergeAliases(cfg.Aliases, c.StringSlice("alias"))),
		structure.WithLogger(logger),
		structure.WithSource(source.Prefetch(scanner.Paths(inventory))),
		structure.WithProgress(func(string) { tracker.Tick() }),
	}
	if c.Bool("cache") || cfg.Cache.Enabled {
		refCache, err := cache.New(filepath.Join(absRoot, cfg.Cache.Dir), cfg.Cache.TTL, true)
		if err != nil {
			logger.Warn("cache unavailable", "error", err)
		} else {
			opts = append(opts, structure.WithCache(refCache))
		}
	}

	builder := structure.New(absRoot, opts...)
	defer builder.Close()

	g, err := builder.Build(c.Context)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()

	return &session{cfg: cfg, root: absRoot, inventory: inventory, graph: g}, nil
}

func loadConfig(c *cli.Context) *config.Config {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			color.Yellow("Warning: %v, using defaults", err)
			cfg = config.DefaultConfig()
		} else {
			cfg = loaded
		}
	} else {
		cfg = config.LoadOrDefault()
	}

	if entry := c.String("entry"); entry != "" {
		cfg.Entry = entry
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}
	return cfg
}

// mergeAliases layers prefix=target flag values over configured aliases.
// Repeating a prefix appends another fallback target.
func mergeAliases(configured map[string][]string, flags []string) map[string][]string {
	if len(configured) == 0 && len(flags) == 0 {
		return nil
	}
	merged := make(map[string][]string, len(configured)+len(flags))
	for prefix, targets := range configured {
		merged[prefix] = append([]string(nil), targets...)
	}
	for _, flag := range flags {
		prefix, target, ok := strings.Cut(flag, "=")
		if !ok || prefix == "" || target == "" {
			color.Yellow("Warning: ignoring malformed alias %q (want prefix=target)", flag)
			continue
		}
		merged[prefix] = append(merged[prefix], target)
	}
	return merged
}

func getFormat(c *cli.Context, cfg *config.Config) string {
	if f := c.String("format"); f != "" {
		return f
	}
	return cfg.Output.Format
}
