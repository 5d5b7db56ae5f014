package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	"github.com/standardbeagle/assetid/internal/version"
)

// maxSuggestDistance is the largest edit distance offered as "did you mean".
const maxSuggestDistance = 3

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	configPath := c.String("config")
	if c.IsSet("config") {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithRoot(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if c.IsSet("json") && c.Bool("json") {
		cfg.Output.Format = config.FormatJSON
	}
	if c.IsSet("workers") {
		cfg.Batch.Workers = c.Int("workers")
		cfg.Scan.Workers = c.Int("workers")
	}
	if c.IsSet("op") {
		cfg.Batch.Op = strings.ToLower(c.String("op"))
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Scan.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, excludes...)
	}
	if c.IsSet("watch") {
		cfg.Scan.Watch = c.Bool("watch")
	}

	if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() *cli.App {
	jsonFlag := &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	}
	strictFlag := &cli.BoolFlag{
		Name:  "strict",
		Usage: "Exit non-zero when a value could not be transformed",
	}
	codecFlags := []cli.Flag{jsonFlag, strictFlag}

	app := &cli.App{
		Name:                   "assetid",
		Usage:                  "Convert, generate and find asset identifiers",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml)",
				Value:   config.KDLFileName,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
			},
			&cli.BoolFlag{
				Name:   "debug-log",
				Usage:  "Write debug output to a file in the temp directory",
				Hidden: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Aliases:   []string{"d"},
				Usage:     "Expand 22-character short ids to standard form",
				ArgsUsage: "<id>...",
				Flags:     codecFlags,
				Action:    codecCommand(config.OpDecode),
			},
			{
				Name:      "compress",
				Aliases:   []string{"c"},
				Usage:     "Pack standard ids into the 23-character form",
				ArgsUsage: "<id>...",
				Flags:     codecFlags,
				Action:    codecCommand(config.OpCompress),
			},
			{
				Name:      "decompress",
				Usage:     "Render id content as dot-separated decimal bytes",
				ArgsUsage: "<id>...",
				Flags:     codecFlags,
				Action:    codecCommand(config.OpDecompress),
			},
			{
				Name:      "reconstruct",
				Aliases:   []string{"original"},
				Usage:     "Recover a 22-character value from a packed id",
				ArgsUsage: "<id>...",
				Flags:     codecFlags,
				Action:    codecCommand(config.OpReconstruct),
			},
			{
				Name:  "gen",
				Usage: "Generate random identifiers",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.BoolFlag{Name: "standard", Aliases: []string{"s"}, Usage: "Generate RFC 4122 standard ids instead of short ids"},
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "How many to generate", Value: 1},
				},
				Action: genCommand,
			},
			{
				Name:      "validate",
				Usage:     "Check values are canonical standard ids",
				ArgsUsage: "<id>...",
				Flags:     []cli.Flag{jsonFlag},
				Action:    validateCommand,
			},
			{
				Name:      "classify",
				Usage:     "Report the form of each value",
				ArgsUsage: "<id>...",
				Flags:     []cli.Flag{jsonFlag},
				Action:    classifyCommand,
			},
			{
				Name:      "batch",
				Usage:     "Transform ids line by line from files or stdin",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					strictFlag,
					&cli.StringFlag{Name: "op", Aliases: []string{"o"}, Usage: "decode | compress | decompress | reconstruct | normalize"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers (0 = one per CPU)"},
					&cli.BoolFlag{Name: "stats", Usage: "Print a summary to stderr"},
				},
				Action: batchCommand,
			},
			{
				Name:      "scan",
				Usage:     "Find asset ids in project files",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.BoolFlag{Name: "watch", Aliases: []string{"W"}, Usage: "Keep running and report ids in changed files"},
					&cli.StringSliceFlag{Name: "include", Usage: "Glob patterns to scan (replaces the configured list)"},
					&cli.StringSliceFlag{Name: "exclude", Usage: "Additional glob patterns to skip"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent file readers"},
				},
				Action: scanCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration as TOML",
				Action: configCommand,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.EnableDebug = "true"
				debug.SetConsoleOutput(c.App.ErrWriter)
			}
			if c.Bool("debug-log") {
				debug.EnableDebug = "true"
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return fmt.Errorf("failed to open debug log: %w", err)
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return unknownCommand(c, c.Args().First())
			}
			return cli.ShowAppHelp(c)
		},
		CommandNotFound: func(c *cli.Context, command string) {
			cli.HandleExitCoder(unknownCommand(c, command))
		},
	}
	return app
}

// unknownCommand reports name with the closest command names, if any.
func unknownCommand(c *cli.Context, name string) error {
	msg := fmt.Sprintf("unknown command %q", name)
	if s := suggestCommands(c.App.Commands, name); len(s) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(quoteAll(s), " or "))
	}
	return cli.Exit(msg, 3)
}

// suggestCommands returns command names within maxSuggestDistance edits of
// name, closest first. Aliases count but the canonical name is returned.
func suggestCommands(commands []*cli.Command, name string) []string {
	type candidate struct {
		name string
		dist int
	}
	best := make(map[string]int)
	for _, cmd := range commands {
		if cmd.Hidden {
			continue
		}
		for _, n := range cmd.Names() {
			d := edlib.LevenshteinDistance(strings.ToLower(name), n)
			if prev, ok := best[cmd.Name]; !ok || d < prev {
				best[cmd.Name] = d
			}
		}
	}

	var cands []candidate
	for n, d := range best {
		if d <= maxSuggestDistance && d < len(n) {
			cands = append(cands, candidate{n, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})

	out := make([]string, 0, 2)
	for _, cand := range cands {
		if cand.dist > cands[0].dist || len(out) == 2 {
			break
		}
		out = append(out, cand.name)
	}
	return out
}

func quoteAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
