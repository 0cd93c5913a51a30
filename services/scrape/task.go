package scrape

import (
	"context"
	"time"

	"dugout-backend/lib/blobstore"
)

// Outcome reports what a task did for one date.
type Outcome string

const (
	OutcomeOk      Outcome = "ok"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Task scrapes one data set for one date. Run is idempotent: tasks
// consult the status ledger and the blob store before fetching, so a
// restarted run picks up where the last one stopped.
type Task interface {
	DataSet() blobstore.DataSet
	Run(ctx context.Context, date time.Time) (Outcome, error)
}
