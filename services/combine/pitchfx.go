package combine

import (
	"sort"
	"strings"
	"time"

	"dugout-backend/lib/mlbid"
	"dugout-backend/lib/scrapers/brooks"
)

// dedupeByGUID keeps one row per play guid. Candidates are ranked by
// (has_zone_location desc, |thrown − game start| asc); everything
// below rank 1 is discarded. Row order is otherwise preserved.
func dedupeByGUID(rows []brooks.PitchFxRow, gameStart time.Time) ([]brooks.PitchFxRow, int) {
	bestByGUID := map[string]int{}
	for i, row := range rows {
		best, seen := bestByGUID[row.PlayGUID]
		if !seen || betterCandidate(row, rows[best], gameStart) {
			bestByGUID[row.PlayGUID] = i
		}
	}
	if len(bestByGUID) == len(rows) {
		return rows, 0
	}

	kept := make([]brooks.PitchFxRow, 0, len(bestByGUID))
	for i, row := range rows {
		if bestByGUID[row.PlayGUID] == i {
			kept = append(kept, row)
		}
	}
	return kept, len(rows) - len(kept)
}

func betterCandidate(a, b brooks.PitchFxRow, gameStart time.Time) bool {
	if a.HasZoneLocation != b.HasZoneLocation {
		return a.HasZoneLocation
	}
	return startDelta(a, gameStart) < startDelta(b, gameStart)
}

func startDelta(row brooks.PitchFxRow, gameStart time.Time) time.Duration {
	d := row.ThrownAt().Sub(gameStart)
	if d < 0 {
		return -d
	}
	return d
}

// assignAtBatIDs derives each row's at-bat id from its inning, teams
// and player ids, then splits any id covering more than one source
// ab_id into instance-numbered ids in sorted ab_id order.
func assignAtBatIDs(gameID string, rows []brooks.PitchFxRow) map[string][]brooks.PitchFxRow {
	byMatchup := map[string][]brooks.PitchFxRow{}
	var matchupOrder []string
	for _, row := range rows {
		id := mlbid.AtBatID{
			GameID:      gameID,
			Inning:      row.Inning,
			PitcherTeam: strings.ToUpper(row.PitcherTeam),
			PitcherID:   row.PitcherID,
			BatterTeam:  strings.ToUpper(row.BatterTeam),
			BatterID:    row.BatterID,
			Instance:    0,
		}
		key := id.String()
		if _, ok := byMatchup[key]; !ok {
			matchupOrder = append(matchupOrder, key)
		}
		byMatchup[key] = append(byMatchup[key], row)
	}

	assigned := map[string][]brooks.PitchFxRow{}
	for _, matchup := range matchupOrder {
		group := byMatchup[matchup]

		distinct := map[int64]bool{}
		for _, row := range group {
			distinct[row.ABID] = true
		}
		if len(distinct) == 1 {
			assigned[matchup] = group
			continue
		}

		abIDs := make([]int64, 0, len(distinct))
		for abID := range distinct {
			abIDs = append(abIDs, abID)
		}
		sort.Slice(abIDs, func(a, b int) bool { return abIDs[a] < abIDs[b] })

		id, err := mlbid.ParseAtBatID(matchup)
		if err != nil {
			// matchup was minted above, it always parses
			assigned[matchup] = group
			continue
		}
		for instance, abID := range abIDs {
			var split []brooks.PitchFxRow
			for _, row := range group {
				if row.ABID == abID {
					split = append(split, row)
				}
			}
			assigned[id.WithInstance(instance).String()] = split
		}
	}
	return assigned
}
