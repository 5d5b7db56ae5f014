package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/assetid/internal/batch"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

func batchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	p, err := batch.New(cfg.Batch.Op,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithMaxLineBytes(int(cfg.Batch.MaxLineBytes)),
	)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var total batch.Stats
	run := func(name string, r io.Reader) error {
		stats, err := p.Process(c.Context, r, c.App.Writer)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		total.Lines += stats.Lines
		total.Blank += stats.Blank
		total.Changed += stats.Changed
		total.Unchanged += stats.Unchanged
		for _, f := range stats.Failures {
			total.Failures = append(total.Failures, fmt.Errorf("%s: %w", name, f))
		}
		return nil
	}

	if c.NArg() == 0 {
		if err := run("stdin", c.App.Reader); err != nil {
			return err
		}
	}
	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return errs.NewFileError("open", path, err)
		}
		err = run(path, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	if c.Bool("stats") {
		fmt.Fprintf(c.App.ErrWriter, "%s: %d lines, %d changed, %d unchanged, %d blank, %d failed\n",
			p.Op(), total.Lines, total.Changed, total.Unchanged, total.Blank, len(total.Failures))
	}
	if c.Bool("strict") {
		if err := total.Err(); err != nil {
			fmt.Fprintln(c.App.ErrWriter, err)
			return cli.Exit(fmt.Sprintf("batch %s: %d lines were not transformed", p.Op(), len(total.Failures)), 1)
		}
	}
	return nil
}
