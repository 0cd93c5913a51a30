package combine

import (
	"fmt"
	"sort"
	"strings"

	"dugout-backend/lib/mlbid"
	"dugout-backend/lib/pitchseq"
	"dugout-backend/lib/scrapers/bbref"
)

// pbpAtBat is one play-by-play at-bat group: every row accumulated up
// to and including the event whose pitch sequence completes the
// at-bat.
type pbpAtBat struct {
	id       mlbid.AtBatID
	inningID string
	final    bbref.PlayByPlayEvent
	events   []bbref.PlayByPlayEvent
	subs     []bbref.Substitution
	expected int
}

type flatRow struct {
	rowNumber int
	inningID  string
	event     *bbref.PlayByPlayEvent
	sub       *bbref.Substitution
}

// resolveMlbID maps a bbref player id to its mlb id.
type resolveMlbID func(bbrefID string) (int64, error)

// buildPlayByPlayAtBats walks the boxscore rows in row-number order,
// grouping them into at-bats. The instance number of the minted
// at-bat id increments each time a 6-tuple repeats within the game.
func buildPlayByPlayAtBats(box bbref.Boxscore, resolve resolveMlbID) ([]pbpAtBat, error) {
	var rows []flatRow
	for i := range box.InningsList {
		inning := &box.InningsList[i]
		for j := range inning.GameEvents {
			rows = append(rows, flatRow{
				rowNumber: inning.GameEvents[j].RowNumber,
				inningID:  inning.InningID,
				event:     &inning.GameEvents[j],
			})
		}
		for j := range inning.Substitutions {
			rows = append(rows, flatRow{
				rowNumber: inning.Substitutions[j].RowNumber,
				inningID:  inning.InningID,
				sub:       &inning.Substitutions[j],
			})
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].rowNumber < rows[b].rowNumber
	})

	matchupUses := map[string]int{}
	var atBats []pbpAtBat
	var pendingEvents []bbref.PlayByPlayEvent
	var pendingSubs []bbref.Substitution

	for _, row := range rows {
		if row.sub != nil {
			pendingSubs = append(pendingSubs, *row.sub)
			continue
		}
		event := *row.event
		pendingEvents = append(pendingEvents, event)

		if isBalk(event) {
			continue
		}
		complete, err := pitchseq.IsCompleteAtBat(event.PitchSequence)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.EventID, err)
		}
		if !complete {
			continue
		}

		pitcherID, err := resolve(event.PitcherID)
		if err != nil {
			return nil, fmt.Errorf("event %s pitcher: %w", event.EventID, err)
		}
		batterID, err := resolve(event.BatterID)
		if err != nil {
			return nil, fmt.Errorf("event %s batter: %w", event.EventID, err)
		}
		expected, err := pitchseq.Count(event.PitchSequence)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.EventID, err)
		}

		id := mlbid.AtBatID{
			GameID:      box.GameID,
			Inning:      event.Inning,
			PitcherTeam: mlbid.BrooksTeamID(event.TeamPitchingID),
			PitcherID:   pitcherID,
			BatterTeam:  mlbid.BrooksTeamID(event.TeamBattingID),
			BatterID:    batterID,
			Instance:    0,
		}
		matchup := id.Matchup().String()
		id.Instance = matchupUses[matchup]
		matchupUses[matchup]++

		atBats = append(atBats, pbpAtBat{
			id:       id,
			inningID: row.inningID,
			final:    event,
			events:   pendingEvents,
			subs:     pendingSubs,
			expected: expected,
		})
		pendingEvents = nil
		pendingSubs = nil
	}

	return atBats, nil
}

// balks advance runners mid at-bat; the row never closes a group
func isBalk(event bbref.PlayByPlayEvent) bool {
	return strings.Contains(strings.ToLower(event.PlayDescription), "balk")
}
