package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/msgspec/internal/build"
	"github.com/dshills/msgspec/internal/config"
	"github.com/dshills/msgspec/internal/diffreport"
	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/naming"
	"github.com/dshills/msgspec/internal/render"
	"github.com/dshills/msgspec/internal/report"
	"github.com/dshills/msgspec/internal/sheet"
	"github.com/dshills/msgspec/internal/store"
)

type buildFlags struct {
	configPath string
	format     string
	outDir     string
	reportOut  string
	ledgerDiff string
	compress   bool
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build message models from specification sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "msgspec.toml", "Run configuration file")
	f.StringVar(&flags.format, "format", "json", "Report format: json or md")
	f.StringVar(&flags.outDir, "out", ".", "Directory for persisted model files")
	f.StringVar(&flags.reportOut, "report-out", "", "Write the report to a file instead of stdout")
	f.StringVar(&flags.ledgerDiff, "ledger-diff", "", "Ledger snapshot file to diff against and refresh")
	f.BoolVar(&flags.compress, "compress", false, "Compress persisted models with zstd")
	return cmd
}

// buildJob is one message type's input; buildOut its result. Types build
// in independent goroutines sharing nothing but read-only sheets.
type buildJob struct {
	typ  message.Type
	body *sheet.Sheet
}

type buildOut struct {
	typ    message.Type
	model  *message.Model
	ledger *naming.Ledger
	err    error
}

func runBuild(flags buildFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return codeError(2, "%s", err)
	}
	if cfg.Spec.Request == "" && cfg.Spec.Response == "" {
		return codeError(2, "run config %s names no request or response sheet", flags.configPath)
	}

	var header *sheet.Sheet
	if cfg.Spec.Header != "" {
		if header, err = sheet.ReadFile(cfg.Spec.Header); err != nil {
			return codeError(2, "%s", err)
		}
	}

	var jobs []buildJob
	if cfg.Spec.Request != "" {
		body, err := sheet.ReadFile(cfg.Spec.Request)
		if err != nil {
			return codeError(2, "%s", err)
		}
		jobs = append(jobs, buildJob{typ: message.TypeRequest, body: body})
	}
	if cfg.Spec.Response != "" {
		body, err := sheet.ReadFile(cfg.Spec.Response)
		if err != nil {
			return codeError(2, "%s", err)
		}
		jobs = append(jobs, buildJob{typ: message.TypeResponse, body: body})
	}

	opts := build.Options{OperationID: cfg.Spec.OperationID, HeaderAnchor: cfg.Spec.HeaderAnchor}

	outs := make([]buildOut, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job buildJob) {
			defer wg.Done()
			log.Debug().Str("sheet", job.body.Name).Str("type", string(job.typ)).Msg("building model")
			m, ledger, err := build.Message(job.typ, job.body, header, opts)
			outs[i] = buildOut{typ: job.typ, model: m, ledger: ledger, err: err}
		}(i, job)
	}
	wg.Wait()

	res := &report.Result{}
	var renames []naming.Entry
	for _, out := range outs {
		if out.err != nil {
			var errs build.Errors
			if !errors.As(out.err, &errs) {
				return codeError(2, "building %s model: %s", out.typ, out.err)
			}
			for _, issue := range errs.Issues() {
				res.Add(issue)
			}
		}
		renames = append(renames, out.ledger.Entries()...)
	}

	// A failed type never persists, so later runs cannot load a tree that
	// flunked its structural checks. The other type still writes.
	for _, out := range outs {
		if out.err != nil {
			continue
		}
		path := filepath.Join(flags.outDir, modelFileName(out.typ, flags.compress))
		if err := store.Save(path, out.model); err != nil {
			return codeError(2, "%s", err)
		}
		log.Debug().Str("path", path).Msg("wrote model")
	}

	if flags.ledgerDiff != "" {
		if err := refreshLedgerSnapshot(flags.ledgerDiff, renames); err != nil {
			return err
		}
	}

	envelope := render.FromResult(toolName, version, "build", flags.configPath, res, renames)
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(2, "invalid format: %s", err)
	}
	data, err := renderer.Render(envelope)
	if err != nil {
		return codeError(2, "rendering report: %s", err)
	}
	if err := writeOutput(flags.reportOut, data); err != nil {
		return err
	}

	if errs, _ := res.Counts(); errs > 0 {
		return codeError(1, "build reported %d error(s)", errs)
	}
	return nil
}

func modelFileName(typ message.Type, compress bool) string {
	name := fmt.Sprintf("%s.model.json", typ)
	if compress {
		name += ".zst"
	}
	return name
}

// refreshLedgerSnapshot diffs the current ledger against the previous
// snapshot, writes the patch next to it when they diverge, and refreshes
// the snapshot for the next run.
func refreshLedgerSnapshot(path string, renames []naming.Entry) error {
	prev, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return codeError(2, "reading ledger snapshot: %s", err)
	}
	if err == nil {
		if patch := diffreport.Ledger(string(prev), renames); patch != "" {
			patchPath := path + ".patch"
			if werr := os.WriteFile(patchPath, []byte(patch), 0o644); werr != nil {
				return codeError(2, "writing ledger patch: %s", werr)
			}
			log.Warn().Str("patch", patchPath).Msg("rename ledger changed since last snapshot")
		}
	}
	if err := os.WriteFile(path, []byte(diffreport.Format(renames)), 0o644); err != nil {
		return codeError(2, "writing ledger snapshot: %s", err)
	}
	return nil
}
