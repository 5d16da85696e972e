// Package convert runs whole-file imports: parse, log validation errors,
// export, archive the outcome and announce it.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"usmtf_importer/internal/messages"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/notify"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/parser"
	"usmtf_importer/internal/storage"
)

// ErrNotExportable is returned for messages without a registered exporter.
var ErrNotExportable = errors.New("message type has no exporter")

// ErrOutputCollision is returned for a batch file whose base name is already
// taken by an earlier file, since both would export to the same output.
var ErrOutputCollision = errors.New("output name already used in batch")

// Result describes one converted file.
type Result struct {
	Path        string
	MessageType string
	Valid       bool
	Errors      []mtf.ValidationError
	Outputs     []string
	ArchiveID   int64
}

// Stats counts the outcome of a batch.
type Stats struct {
	Files    int
	Exported int
	Invalid  int
	Failed   int
}

// Options wires a Converter. Archive and Publisher are optional.
type Options struct {
	Parser    *parser.Parser
	Archive   storage.Archive
	Publisher notify.Publisher
	Logger    *slog.Logger
	OutDir    string
}

// Converter is safe for concurrent use once built.
type Converter struct {
	parser    *parser.Parser
	archive   storage.Archive
	publisher notify.Publisher
	logger    *slog.Logger
	outDir    string
	now       func() time.Time
}

func New(opts Options) *Converter {
	c := &Converter{
		parser:    opts.Parser,
		archive:   opts.Archive,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		outDir:    opts.OutDir,
		now:       time.Now,
	}
	if c.publisher == nil {
		c.publisher = notify.Nop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Convert imports the file at path and writes its export under the output
// directory, keeping the input's base name.
func (c *Converter) Convert(ctx context.Context, path string) (Result, error) {
	res := Result{Path: path}
	log := c.logger.With("file", path)

	msg, err := c.parser.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("parse %s: %w", path, err)
	}
	res.MessageType = msg.Type()
	res.Valid = msg.IsValid()
	res.Errors = msg.Errors()
	msg.LogErrors(log)

	exp, ok := msg.(messages.Exporter)
	if !ok {
		if err := c.save(ctx, &res); err != nil {
			return res, err
		}
		return res, fmt.Errorf("%s (%s): %w", path, msg.Type(), ErrNotExportable)
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	if target := filepath.Join(c.outDir, filepath.Base(path)); sameFile(path, target) {
		return res, fmt.Errorf("export %s: %w: output %s would overwrite the input", path, output.ErrExport, target)
	}
	res.Outputs, err = exp.Export(c.outDir, filepath.Base(path))
	if err != nil {
		return res, fmt.Errorf("export %s: %w", path, err)
	}
	log.Info("exported", "type", res.MessageType, "valid", res.Valid, "errors", len(res.Errors), "outputs", len(res.Outputs))

	if err := c.save(ctx, &res); err != nil {
		return res, err
	}

	ev := notify.ExportEvent{
		Path:        path,
		MessageType: res.MessageType,
		Outputs:     res.Outputs,
		Valid:       res.Valid,
		ErrorCount:  len(res.Errors),
		ExportedAt:  c.now().UTC(),
	}
	if err := c.publisher.Publish(ctx, ev); err != nil {
		return res, fmt.Errorf("publish %s: %w", path, err)
	}
	return res, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (c *Converter) save(ctx context.Context, res *Result) error {
	if c.archive == nil {
		return nil
	}
	imp := storage.Import{
		Path:        res.Path,
		MessageType: res.MessageType,
		Valid:       res.Valid,
		Outputs:     res.Outputs,
		ImportedAt:  c.now().UTC(),
	}
	for _, e := range res.Errors {
		imp.Issues = append(imp.Issues, storage.Issue(e))
	}
	id, err := c.archive.Save(ctx, imp)
	if err != nil {
		return fmt.Errorf("archive %s: %w", res.Path, err)
	}
	res.ArchiveID = id
	return nil
}

// Batch converts paths with at most jobs files in flight. A failing file
// does not stop the others; every failure is joined into the returned
// error. Results are in the order of paths. A file whose base name repeats
// an earlier one fails with ErrOutputCollision and is not converted.
func (c *Converter) Batch(ctx context.Context, paths []string, jobs int) ([]Result, Stats, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]Result, len(paths))
	st := Stats{Files: len(paths)}

	var mu sync.Mutex
	var errs []error

	skip := make([]bool, len(paths))
	taken := make(map[string]string, len(paths))
	for i, path := range paths {
		base := filepath.Base(path)
		first, ok := taken[base]
		if !ok {
			taken[base] = path
			continue
		}
		skip[i] = true
		results[i] = Result{Path: path}
		err := fmt.Errorf("%s: %w by %s", path, ErrOutputCollision, first)
		st.Failed++
		errs = append(errs, err)
		c.logger.Error("convert failed", "file", path, "err", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		if skip[i] {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.Convert(ctx, path)
			results[i] = res

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				st.Failed++
				errs = append(errs, err)
				c.logger.Error("convert failed", "file", path, "err", err)
			case !res.Valid:
				st.Exported++
				st.Invalid++
			default:
				st.Exported++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return results, st, errors.Join(errs...)
}
