// Package scrape drives the acquisition pipeline: fetch each page,
// parse it into a tagged json document, persist the document (and
// the rendered html it came from) to the blob store, and settle the
// result into the status ledger.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/fetch"
	"dugout-backend/services/combine"
	"dugout-backend/services/status"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/scrape")

const dateLayout = "2006-01-02"

type Config struct {
	Fetch fetch.Config `json:"fetch"`
	// PitchFxWorkers bounds concurrent pitchfx page fetches within
	// one game. Both sites are rate sensitive, keep this small.
	PitchFxWorkers int `json:"pitchfx_workers"`
	// CacheHTML stores the rendered page next to every parsed
	// document so parsers can be rerun without refetching.
	CacheHTML bool `json:"cache_html"`
}

func DefaultConfig() Config {
	return Config{
		Fetch:          fetch.DefaultConfig(),
		PitchFxWorkers: 2,
		CacheHTML:      true,
	}
}

type Service struct {
	status    status.Service
	store     blobstore.Store
	fetcher   fetch.Fetcher
	combine   combine.Service
	workers   int
	cacheHTML bool
}

func NewService(
	statusSvc status.Service,
	store blobstore.Store,
	fetcher fetch.Fetcher,
	combineSvc combine.Service,
	cfg Config,
) Service {
	workers := cfg.PitchFxWorkers
	if workers < 1 {
		workers = 1
	}
	return Service{
		status:    statusSvc,
		store:     store,
		fetcher:   fetcher,
		combine:   combineSvc,
		workers:   workers,
		cacheHTML: cfg.CacheHTML,
	}
}

// tasks returns the requested tasks in pipeline order, regardless of
// the order data sets were asked for.
func (s Service) tasks(dataSets []blobstore.DataSet) ([]Task, error) {
	requested := make(map[blobstore.DataSet]bool, len(dataSets))
	for _, ds := range dataSets {
		if !blobstore.Valid(ds) || ds == blobstore.CombinedData {
			return nil, fmt.Errorf("unknown data set %q", ds)
		}
		requested[ds] = true
	}
	all := []Task{
		bbrefGamesTask{svc: s},
		brooksGamesTask{svc: s},
		bbrefBoxscoresTask{svc: s},
		pitchLogsTask{svc: s},
		pitchFxTask{svc: s},
	}
	var tasks []Task
	for _, task := range all {
		if requested[task.DataSet()] {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no data sets requested")
	}
	return tasks, nil
}

func (s Service) putJSON(ctx context.Context, key string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s Service) putHTML(ctx context.Context, key, html string) error {
	if !s.cacheHTML {
		return nil
	}
	if err := s.store.Put(ctx, key, []byte(html)); err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}
	return nil
}

func fail(span trace.Span, err error) (Outcome, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return OutcomeFailed, err
}
