// Package batch applies one identifier operation to many lines in parallel
// while keeping the output in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	errs "github.com/standardbeagle/assetid/internal/errors"
	"github.com/standardbeagle/assetid/internal/idcodec"
)

// chunkLines bounds how many lines are held in memory between writes.
const chunkLines = 4096

// Func transforms one identifier. A non-nil error means the value was left
// unchanged.
type Func func(string) (string, error)

// OpFunc returns the transformation registered under op.
func OpFunc(op string) (Func, error) {
	switch op {
	case config.OpDecode:
		return idcodec.TryDecode, nil
	case config.OpCompress:
		return idcodec.TryCompress, nil
	case config.OpDecompress:
		return idcodec.TryDecompress, nil
	case config.OpReconstruct:
		return idcodec.TryReconstruct, nil
	case config.OpNormalize:
		return func(s string) (string, error) { return idcodec.Normalize(s), nil }, nil
	}
	return nil, errs.NewConfigError("op", op, fmt.Errorf("unknown operation, expected one of %v", config.BatchOps))
}

// Result is the outcome for one input line.
type Result struct {
	Line   int    `json:"line"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Err    error  `json:"-"`
}

// Changed reports whether the operation produced a different value.
func (r Result) Changed() bool {
	return r.Err == nil && r.Output != r.Input
}

// Stats summarises a Process run.
type Stats struct {
	Lines     int
	Blank     int
	Changed   int
	Unchanged int
	// Failures holds one error per line the operation could not transform.
	Failures []error
}

// Err folds the per-line failures into a single error, or nil.
func (s Stats) Err() error {
	return errs.NewMultiError(s.Failures).ErrorOrNil()
}

// Processor runs an operation with a bounded number of workers.
type Processor struct {
	op           string
	fn           Func
	workers      int
	maxLineBytes int
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers caps concurrent transformations. Values below one mean one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithMaxLineBytes sets the longest accepted input line.
func WithMaxLineBytes(n int) Option {
	return func(p *Processor) {
		p.maxLineBytes = n
	}
}

// New creates a Processor for the named operation.
func New(op string, opts ...Option) (*Processor, error) {
	fn, err := OpFunc(op)
	if err != nil {
		return nil, err
	}
	p := &Processor{op: op, fn: fn, maxLineBytes: 1024 * 1024}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.NumCPU()
	}
	if p.maxLineBytes < bufio.MaxScanTokenSize {
		p.maxLineBytes = bufio.MaxScanTokenSize
	}
	return p, nil
}

// Op returns the operation name.
func (p *Processor) Op() string {
	return p.op
}

// ProcessLines transforms every value and returns results in input order.
// Line numbers start at one.
func (p *Processor) ProcessLines(ctx context.Context, lines []string) ([]Result, error) {
	results := make([]Result, len(lines))
	if err := p.run(ctx, lines, 1, results); err != nil {
		return nil, err
	}
	return results, nil
}

// Process reads identifiers from r, one per line, and writes each result to
// w in the same order. Blank lines are copied through. Lines the operation
// cannot transform are written unchanged and reported in Stats.Failures.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), p.maxLineBytes)
	out := bufio.NewWriter(w)

	chunk := make([]string, 0, chunkLines)
	results := make([]Result, chunkLines)
	first := 1

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		res := results[:len(chunk)]
		if err := p.run(ctx, chunk, first, res); err != nil {
			return err
		}
		for _, r := range res {
			stats.record(r)
			if _, err := out.WriteString(r.Output + "\n"); err != nil {
				return errs.NewFileError("write", "output", err)
			}
		}
		first += len(chunk)
		chunk = chunk[:0]
		return nil
	}

	for scanner.Scan() {
		chunk = append(chunk, strings.TrimSuffix(scanner.Text(), "\r"))
		if len(chunk) == chunkLines {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading input at line %d: %w", first+len(chunk), err)
	}
	if err := flush(); err != nil {
		return stats, err
	}
	if err := out.Flush(); err != nil {
		return stats, errs.NewFileError("write", "output", err)
	}

	debug.LogBatch("%s: %d lines, %d changed, %d failed", p.op, stats.Lines, stats.Changed, len(stats.Failures))
	return stats, nil
}

// run fills results[i] for lines[i]. Each worker writes only its own slot, so
// ordering needs no coordination.
func (p *Processor) run(ctx context.Context, lines []string, firstLine int, results []Result) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var done atomic.Int64
	for i, line := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.transform(firstLine+i, line)
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		debug.LogBatch("%s cancelled after %d of %d lines: %v", p.op, done.Load(), len(lines), err)
		return err
	}
	return nil
}

func (p *Processor) transform(line int, input string) Result {
	res := Result{Line: line, Input: input, Output: input}
	if strings.TrimSpace(input) == "" {
		return res
	}
	out, err := p.fn(input)
	if err != nil {
		res.Err = fmt.Errorf("line %d: %w", line, err)
		return res
	}
	res.Output = out
	return res
}

func (s *Stats) record(r Result) {
	s.Lines++
	switch {
	case strings.TrimSpace(r.Input) == "":
		s.Blank++
	case r.Err != nil:
		s.Unchanged++
		s.Failures = append(s.Failures, r.Err)
	case r.Output != r.Input:
		s.Changed++
	default:
		s.Unchanged++
	}
}
