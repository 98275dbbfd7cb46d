package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anonto42/post-app/backend/internal/moderation"
	"github.com/anonto42/post-app/backend/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	run(os.Args)
}

func run(args []string) {
	app := cli.App{
		Name:  "post-app",
		Usage: "posts backend: moderation, likes and notifications",
	}

	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the HTTP API and metrics servers",
			Action: serve,
		},
		{
			Name:      "check-text",
			Usage:     "scan text against the banned-term list and print the redacted form",
			ArgsUsage: "<text>",
			Action:    checkText,
		},
	}

	if err := app.Run(args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

// buildMatcher combines the built-in term lists with EXTRA_BANNED_TERMS.
func buildMatcher(cfg *config.Config) *moderation.Matcher {
	terms := moderation.BuildTerms(moderation.DefaultTerms(), moderation.ParseTermList(cfg.ExtraBannedTerms))
	return moderation.NewMatcher(terms)
}

func checkText(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return cli.Exit("expected exactly one text argument", 2)
	}

	cfg := config.Load()
	m := buildMatcher(cfg)
	res := m.Scan(cctx.Args().First())

	fmt.Fprintf(cctx.App.Writer, "matched: %t\n", res.Matched)
	fmt.Fprintf(cctx.App.Writer, "normalized: %s\n", moderation.Normalize(cctx.Args().First()))
	fmt.Fprintf(cctx.App.Writer, "redacted: %s\n", res.Text)
	return nil
}
