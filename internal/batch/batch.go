// Package batch extracts many inputs of the same page type concurrently
// and stores every outcome.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"portalextract/internal/registry"
	"portalextract/internal/store"
	"portalextract/internal/telemetry"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"golang.org/x/sync/errgroup"
)

const report_batch_store = "batch.store"

type Options struct {
	// Workers bounds the number of files extracted at once, values below 1
	// mean a single worker.
	Workers int
	// Charset is passed to htmlutil.DecodeReader for every file.
	Charset string
	// OnDone is called once per file as it finishes, possibly from
	// multiple goroutines at once.
	OnDone func(item Item)
}

// Item is the outcome of a single file.
type Item struct {
	Source string
	Record any
	Issues []string
	Err    error
}

func (i Item) Ok() bool {
	return i.Err == nil
}

// Summary counts the outcomes of a run.
type Summary struct {
	Run     store.Run
	Total   int
	Ok      int
	Invalid int
	Failed  int
}

func readFile(path, charset string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return htmlutil.ReadString(f, charset)
}

func extract(ctx context.Context, reg *registry.Registry, portal, page, path, charset string) Item {
	item := Item{Source: filepath.Base(path)}

	input, err := readFile(path, charset)
	if err != nil {
		item.Err = err
		return item
	}

	record, err := reg.Run(ctx, portal, page, input)
	if issues, ok := validate.IssuesOf(err); ok {
		item.Issues = make([]string, len(issues))
		for i, issue := range issues {
			item.Issues[i] = issue.String()
		}
	}
	item.Record = record
	item.Err = err
	return item
}

func toResult(runId string, item Item) (store.Result, error) {
	result := store.Result{
		RunId:  runId,
		Source: item.Source,
		Ok:     item.Ok(),
		Issues: item.Issues,
	}
	if item.Err != nil && len(item.Issues) == 0 {
		result.Issues = []string{item.Err.Error()}
	}
	if item.Ok() {
		encoded, err := json.Marshal(item.Record)
		if err != nil {
			return result, err
		}
		result.Record = string(encoded)
	}
	return result, nil
}

// Run extracts every file as (portal, page) and writes the outcomes to db
// under a new run. A file that fails to extract does not stop the batch,
// only a lookup or storage failure does.
func Run(
	ctx context.Context,
	tel telemetry.API,
	reg *registry.Registry,
	db *store.Store,
	portal, page string,
	files []string,
	opts Options,
) (Summary, error) {
	_, err := reg.Lookup(portal, page)
	if err != nil {
		return Summary{}, err
	}

	run, err := db.BeginRun(ctx, portal, page)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Run: run, Total: len(files)}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for _, path := range files {
		g.Go(func() error {
			// a failed store cancels the files still queued
			if err := gctx.Err(); err != nil {
				return err
			}
			item := extract(gctx, reg, portal, page, path, opts.Charset)

			result, err := toResult(run.Id, item)
			if err == nil {
				err = db.AddResult(gctx, result)
			}
			if err != nil {
				tel.ReportBroken(report_batch_store, run.Id, item.Source, err)
				return fmt.Errorf("store %s: %w", item.Source, err)
			}

			mu.Lock()
			switch {
			case item.Ok():
				summary.Ok++
			case len(item.Issues) > 0:
				summary.Invalid++
			default:
				summary.Failed++
			}
			mu.Unlock()

			if opts.OnDone != nil {
				opts.OnDone(item)
			}
			return nil
		})
	}

	err = g.Wait()
	return summary, err
}
