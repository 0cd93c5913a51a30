package mlbid

import (
	"fmt"
	"strconv"
	"strings"
)

// AtBatID is the canonical 7-tuple identifying a plate appearance
// across both sites, e.g. "TOR201906170_03_NYA_547888_TOR_665489_0".
// Instance discriminates repeated pitcher/batter matchups within a
// single inning and is 0 for the common case.
type AtBatID struct {
	GameID      string
	Inning      int
	PitcherTeam string
	PitcherID   int64
	BatterTeam  string
	BatterID    int64
	Instance    int
}

func (id AtBatID) String() string {
	return fmt.Sprintf(
		"%s_%02d_%s_%d_%s_%d_%d",
		id.GameID, id.Inning,
		id.PitcherTeam, id.PitcherID,
		id.BatterTeam, id.BatterID,
		id.Instance,
	)
}

// WithInstance returns a copy carrying the given instance number.
func (id AtBatID) WithInstance(instance int) AtBatID {
	id.Instance = instance
	return id
}

// Matchup is the id without its instance number, used for keying
// repeated-matchup detection.
func (id AtBatID) Matchup() AtBatID {
	return id.WithInstance(0)
}

func ParseAtBatID(s string) (AtBatID, error) {
	fields := strings.Split(s, "_")
	if len(fields) != 7 {
		return AtBatID{}, fmt.Errorf("%w: at bat id '%s' must have 7 fields", ErrInvalidGameID, s)
	}
	if _, err := ParseBBRefGameID(fields[0]); err != nil {
		return AtBatID{}, err
	}

	inning, err := strconv.Atoi(fields[1])
	if err != nil {
		return AtBatID{}, fmt.Errorf("%w: at bat id '%s' inning: %v", ErrInvalidGameID, s, err)
	}
	pitcherID, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return AtBatID{}, fmt.Errorf("%w: at bat id '%s' pitcher id: %v", ErrInvalidGameID, s, err)
	}
	batterID, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return AtBatID{}, fmt.Errorf("%w: at bat id '%s' batter id: %v", ErrInvalidGameID, s, err)
	}
	instance, err := strconv.Atoi(fields[6])
	if err != nil {
		return AtBatID{}, fmt.Errorf("%w: at bat id '%s' instance: %v", ErrInvalidGameID, s, err)
	}

	return AtBatID{
		GameID:      fields[0],
		Inning:      inning,
		PitcherTeam: fields[2],
		PitcherID:   pitcherID,
		BatterTeam:  fields[4],
		BatterID:    batterID,
		Instance:    instance,
	}, nil
}
