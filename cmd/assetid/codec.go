package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/assetid/internal/batch"
	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/idcodec"
)

type codecResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// codecCommand applies op to each argument, one result per line.
func codecCommand(op string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit(fmt.Sprintf("%s: at least one identifier is required", c.Command.Name), 2)
		}
		cfg, err := loadConfigWithOverrides(c)
		if err != nil {
			return err
		}
		fn, err := batch.OpFunc(op)
		if err != nil {
			return err
		}

		results := make([]codecResult, 0, c.NArg())
		failed := 0
		for _, id := range c.Args().Slice() {
			out, err := fn(id)
			r := codecResult{Input: id, Output: out, Changed: err == nil && out != id}
			if err != nil {
				r.Output = id
				r.Error = err.Error()
				failed++
			}
			results = append(results, r)
		}

		if cfg.Output.Format == config.FormatJSON {
			if err := writeJSON(c.App.Writer, results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				fmt.Fprintln(c.App.Writer, r.Output)
			}
		}

		if c.Bool("strict") && failed > 0 {
			for _, r := range results {
				if r.Error != "" {
					fmt.Fprintln(c.App.ErrWriter, r.Error)
				}
			}
			return cli.Exit(fmt.Sprintf("%s: %d of %d values were not transformed", op, failed, len(results)), 1)
		}
		return nil
	}
}

func genCommand(c *cli.Context) error {
	count := c.Int("count")
	if count < 1 {
		return cli.Exit("gen: --count must be at least 1", 2)
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	gen := idcodec.GenerateShortID
	if c.Bool("standard") {
		gen = idcodec.GenerateStandardID
	}
	ids := make([]string, count)
	for i := range ids {
		ids[i] = gen()
	}

	if cfg.Output.Format == config.FormatJSON {
		return writeJSON(c.App.Writer, ids)
	}
	for _, id := range ids {
		fmt.Fprintln(c.App.Writer, id)
	}
	return nil
}

func validateCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("validate: at least one identifier is required", 2)
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	type result struct {
		Input string `json:"input"`
		Valid bool   `json:"valid"`
	}
	results := make([]result, 0, c.NArg())
	invalid := 0
	for _, id := range c.Args().Slice() {
		ok := idcodec.IsValidStandardID(id)
		if !ok {
			invalid++
		}
		results = append(results, result{id, ok})
	}

	if cfg.Output.Format == config.FormatJSON {
		if err := writeJSON(c.App.Writer, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			status := "valid"
			if !r.Valid {
				status = "invalid"
			}
			fmt.Fprintf(c.App.Writer, "%s\t%s\n", r.Input, status)
		}
	}

	if invalid > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func classifyCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("classify: at least one identifier is required", 2)
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	type result struct {
		Input    string `json:"input"`
		Kind     string `json:"kind"`
		Standard string `json:"standard,omitempty"`
	}
	results := make([]result, 0, c.NArg())
	for _, id := range c.Args().Slice() {
		kind := idcodec.Classify(id)
		r := result{Input: id, Kind: kind.String()}
		if kind == idcodec.KindShort || kind == idcodec.KindStandard {
			r.Standard = idcodec.Normalize(id)
		}
		results = append(results, r)
	}

	if cfg.Output.Format == config.FormatJSON {
		return writeJSON(c.App.Writer, results)
	}
	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", r.Input, r.Kind, r.Standard)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
