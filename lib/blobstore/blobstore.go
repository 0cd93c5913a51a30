package blobstore

import (
	"context"
	"fmt"
	"strings"
)

var ErrNotExist = fmt.Errorf("blob does not exist")

// Store is a key to bytes store. Keys use forward slashes and are
// laid out `<year>/<data-set-folder>/<identifier>.<ext>`.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// DataSet names one scraped document kind; the value doubles as the
// storage folder name.
type DataSet string

const (
	BBRefGamesForDate  DataSet = "bbref_games_for_date"
	BBRefBoxscores     DataSet = "bbref_boxscores"
	BrooksGamesForDate DataSet = "brooks_games_for_date"
	BrooksPitchLogs    DataSet = "brooks_pitch_logs"
	BrooksPitchFx      DataSet = "brooks_pitchfx"
	CombinedData       DataSet = "combined_data"
)

// AllDataSets is the scrape pipeline order.
var AllDataSets = []DataSet{
	BBRefGamesForDate,
	BrooksGamesForDate,
	BBRefBoxscores,
	BrooksPitchLogs,
	BrooksPitchFx,
}

func Valid(ds DataSet) bool {
	for _, known := range AllDataSets {
		if ds == known {
			return true
		}
	}
	return ds == CombinedData
}

func JSONKey(year int, ds DataSet, identifier string) string {
	return fmt.Sprintf("%d/%s/%s.json", year, ds, identifier)
}

// HTMLKey is the parallel key caching the rendered page a json
// document was parsed from.
func HTMLKey(year int, ds DataSet, identifier string) string {
	return fmt.Sprintf("%d/%s_html/%s.html", year, ds, identifier)
}

// PatchListKey addresses the human curated patch list that sits
// alongside a parsed document.
func PatchListKey(jsonKey string) string {
	return strings.TrimSuffix(jsonKey, ".json") + "_PATCH_LIST.json"
}

func YearPrefix(year int) string {
	return fmt.Sprintf("%d/", year)
}
