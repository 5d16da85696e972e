// Command usmtf_importer converts USMTF airspace control orders and air
// tasking orders into scenario files.
//
// Commands:
//
//	convert  - parse, validate and export one or more files
//	inspect  - print the parsed records of a file as JSON
//	watch    - convert files as they are dropped into a directory
//	history  - list recent imports from the archive
//	serve    - serve the archive and message inspection over HTTP
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"usmtf_importer/internal/api"
	"usmtf_importer/internal/config"
	"usmtf_importer/internal/convert"
	"usmtf_importer/internal/logging"
	"usmtf_importer/internal/messages"
	"usmtf_importer/internal/notify"
	"usmtf_importer/internal/parser"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/storage"
	"usmtf_importer/internal/watch"
)

// app holds everything a command needs, built from the loaded config.
type app struct {
	cfg       config.Config
	log       *logging.Logger
	parser    *parser.Parser
	archive   storage.Archive
	publisher notify.Publisher
}

// setup loads the configuration and builds the registries. Archive and
// publisher are only opened when withSinks is set.
func setup(ctx context.Context, cmd *cli.Command, withSinks bool) (*app, error) {
	cfg, err := config.LoadFile(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger, publisher: notify.Nop{}}

	records := sets.NewRegistry()
	if err := sets.Register(records, cfg.Records.Tags...); err != nil {
		a.close()
		return nil, err
	}
	msgs := messages.NewRegistry()
	messages.Register(msgs, records)
	a.parser = parser.New(records, msgs)

	if !withSinks {
		return a, nil
	}
	if a.archive, err = storage.Open(ctx, cfg.Archive); err != nil {
		a.close()
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if a.publisher, err = notify.New(cfg.NATS); err != nil {
		a.close()
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return a, nil
}

func (a *app) converter(outDir string) *convert.Converter {
	return convert.New(convert.Options{
		Parser:    a.parser,
		Archive:   a.archive,
		Publisher: a.publisher,
		Logger:    a.log.Logger,
		OutDir:    outDir,
	})
}

func (a *app) close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.archive != nil {
		_ = a.archive.Close()
	}
	_ = a.log.Close()
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("convert: no input files")
	}
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	outDir := a.cfg.Output.Dir
	if v := cmd.String("out"); v != "" {
		outDir = v
	}
	jobs := a.cfg.Output.Jobs
	if v := int(cmd.Int("jobs")); v > 0 {
		jobs = v
	}

	results, st, err := a.converter(outDir).Batch(ctx, paths, jobs)
	for _, r := range results {
		for _, out := range r.Outputs {
			fmt.Fprintln(cmd.Root().Writer, out)
		}
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "stats: files=%d exported=%d invalid=%d failed=%d\n",
		st.Files, st.Exported, st.Invalid, st.Failed)
	return err
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("inspect: expected exactly one file")
	}
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	rep, err := a.converter("").Inspect(cmd.Args().First())
	if err != nil {
		return err
	}
	return writeJSON(cmd.Root().Writer, rep, cmd.Bool("pretty"))
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("JSON encode error: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if v := cmd.String("dir"); v != "" {
		a.cfg.Watch.Dir = v
	}
	if v := cmd.String("out"); v != "" {
		a.cfg.Output.Dir = v
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := watch.Options{
		Dir:      a.cfg.Watch.Dir,
		Pattern:  a.cfg.Watch.Pattern,
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.log.Logger,
	}
	conv := a.converter(a.cfg.Output.Dir)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.Watch(ctx, opts, func(ctx context.Context, path string) {
		if _, err := conv.Convert(ctx, path); err != nil {
			a.log.Error("convert failed", slog.String("file", path), slog.String("error", err.Error()))
		}
	})
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.archive, err = storage.Open(ctx, a.cfg.Archive); err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	imps, err := a.archive.Query(ctx, storage.QueryParams{
		MessageType: strings.ToUpper(cmd.String("type")),
		InvalidOnly: cmd.Bool("invalid"),
		Limit:       int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIMPORTED\tTYPE\tVALID\tERRORS\tPATH")
	for _, imp := range imps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%d\t%s\n",
			imp.ID, imp.ImportedAt.Format("2006-01-02 15:04:05"), imp.MessageType, imp.Valid, len(imp.Issues), imp.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts, err := a.archive.CountByType(ctx)
	if err != nil {
		return err
	}
	top, err := a.archive.TopIssues(ctx, 5)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out)
	for _, typ := range sortedKeys(counts) {
		fmt.Fprintf(out, "%s: %d imports\n", typ, counts[typ])
	}
	if len(top) > 0 {
		fmt.Fprintln(out, "\nmost frequent validation errors:")
		summaries := sortedKeys(top)
		sort.SliceStable(summaries, func(i, j int) bool { return top[summaries[i]] > top[summaries[j]] })
		for _, s := range summaries {
			fmt.Fprintf(out, "  %5d  %s\n", top[s], s)
		}
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.archive, err = storage.Open(ctx, a.cfg.Archive); err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	cfg := a.cfg.API
	if v := cmd.String("addr"); v != "" {
		cfg.Addr = v
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.NewServer(a.archive, a.parser, a.log.Logger, cfg).Run(ctx)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "out",
		Usage: "Output directory (default: output.dir from config)",
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "usmtf_importer",
		Usage: "Convert USMTF ACO and ATO messages into scenario files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (defaults apply when empty)",
				Sources: cli.EnvVars("USMTF_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Parse, validate and export message files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					outFlag(),
					&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "Files converted concurrently"},
				},
				Action: runConvert,
			},
			{
				Name:      "inspect",
				Usage:     "Print the parsed records of a file as JSON",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: runInspect,
			},
			{
				Name:  "watch",
				Usage: "Convert files as they appear in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Directory to watch (default: watch.dir from config)"},
					outFlag(),
				},
				Action: runWatch,
			},
			{
				Name:  "history",
				Usage: "List recent imports from the archive",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum imports listed"},
					&cli.StringFlag{Name: "type", Usage: "Only list this message type"},
					&cli.BoolFlag{Name: "invalid", Usage: "Only list imports with validation errors"},
				},
				Action: runHistory,
			},
			{
				Name:  "serve",
				Usage: "Serve the import archive and message inspection over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address (default: api.addr from config)"},
				},
				Action: runServe,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
