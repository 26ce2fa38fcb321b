package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"ralfix/doctor"
)

// Execute runs the ralfix CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "ralfix",
		Usage:                  "Repair common compiler errors in generated Ralph contracts",
		Version:                version,
		UseShortOptionHandling: true,
		Flags:                  sharedFlags(),
		// Allow `ralfix contract.ral` as shorthand for printing the
		// repaired source to stdout.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return cli.DefaultShowRootCommandHelp(cmd)
			}
			hints := mappingHints(cmd)
			for _, path := range cmd.Args().Slice() {
				src, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				fmt.Print(doctor.Fix(string(src), hints...))
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "fix",
				Usage:     "Repair files in place",
				ArgsUsage: "<file.ral>...",
				Flags:     sharedFlags(),
				Action:    fixAction,
			},
			{
				Name:      "check",
				Usage:     "Report files that need repairs, without writing",
				ArgsUsage: "<file.ral>...",
				Flags:     sharedFlags(),
				Action:    checkAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mappings",
			Aliases: []string{"m"},
			Usage:   "Comma-separated mapping names declared outside the input",
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Aliases: []string{"C"},
			Usage:   "Disable ANSI color output",
		},
	}
}

func fixAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: ralfix fix <file.ral>...")
	}
	hints := mappingHints(cmd)
	color := colorEnabled(cmd)
	for _, path := range cmd.Args().Slice() {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fixed := doctor.Fix(string(src), hints...)
		if fixed == string(src) {
			fmt.Printf("%s No changes needed for %s\n", mark("✓", green, color), path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(fixed), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("%s Fixed %s\n", mark("✓", green, color), path)
	}
	return nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: ralfix check <file.ral>...")
	}
	hints := mappingHints(cmd)
	color := colorEnabled(cmd)
	dirty := false
	for _, path := range cmd.Args().Slice() {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if doctor.Fix(string(src), hints...) != string(src) {
			fmt.Printf("%s %s needs fixes\n", mark("✗", red, color), path)
			dirty = true
		}
	}
	if dirty {
		os.Exit(1)
	}
	return nil
}

func mappingHints(cmd *cli.Command) []string {
	var hints []string
	for _, name := range strings.Split(cmd.String("mappings"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			hints = append(hints, name)
		}
	}
	return hints
}

const (
	green = "\x1b[32m"
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func colorEnabled(cmd *cli.Command) bool {
	if cmd.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func mark(sym, color string, enabled bool) string {
	if !enabled {
		return sym
	}
	return color + sym + reset
}
