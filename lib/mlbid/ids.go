package mlbid

import (
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidGameID = fmt.Errorf("invalid game id")

// BBRefGameID is the 12 character boxscore id, e.g. "TOR201906170".
// The final digit is the game-of-day index: 0 for a single game,
// 1 or 2 for the games of a doubleheader.
type BBRefGameID struct {
	HomeTeamID string
	Year       int
	Month      int
	Day        int
	GameOfDay  int
}

func ParseBBRefGameID(s string) (BBRefGameID, error) {
	if len(s) != 12 {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' must be 12 characters", ErrInvalidGameID, s)
	}
	team := s[0:3]
	if team != strings.ToUpper(team) {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' team code must be uppercase", ErrInvalidGameID, s)
	}

	year, err := strconv.Atoi(s[3:7])
	if err != nil {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' year: %v", ErrInvalidGameID, s, err)
	}
	month, err := strconv.Atoi(s[7:9])
	if err != nil {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' month: %v", ErrInvalidGameID, s, err)
	}
	day, err := strconv.Atoi(s[9:11])
	if err != nil {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' day: %v", ErrInvalidGameID, s, err)
	}
	gameOfDay, err := strconv.Atoi(s[11:12])
	if err != nil {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' game-of-day: %v", ErrInvalidGameID, s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' is not a real date", ErrInvalidGameID, s)
	}
	if gameOfDay > 2 {
		return BBRefGameID{}, fmt.Errorf("%w: '%s' game-of-day must be 0-2", ErrInvalidGameID, s)
	}

	return BBRefGameID{
		HomeTeamID: team,
		Year:       year,
		Month:      month,
		Day:        day,
		GameOfDay:  gameOfDay,
	}, nil
}

func (id BBRefGameID) String() string {
	return fmt.Sprintf(
		"%s%04d%02d%02d%d",
		id.HomeTeamID, id.Year, id.Month, id.Day, id.GameOfDay,
	)
}

func (id BBRefGameID) DateStr() string {
	return fmt.Sprintf("%04d-%02d-%02d", id.Year, id.Month, id.Day)
}

// GameNumber normalizes the game-of-day index to a 1-based game
// number: 0 and 1 both mean the first game of the day.
func (id BBRefGameID) GameNumber() int {
	if id.GameOfDay < 2 {
		return 1
	}
	return id.GameOfDay
}

// ToBrooks converts to the brooksbaseball id for the same game. The
// away team is not recoverable from the bbref id so the caller must
// supply it (as a bbref team code).
func (id BBRefGameID) ToBrooks(awayTeamID string) BrooksGameID {
	return BrooksGameID{
		AwayTeamID: BrooksTeamID(awayTeamID),
		HomeTeamID: BrooksTeamID(id.HomeTeamID),
		Year:       id.Year,
		Month:      id.Month,
		Day:        id.Day,
		GameNumber: id.GameNumber(),
	}
}

// BrooksGameID is the 30 character brooksbaseball id, e.g.
// "gid_2019_06_17_anamlb_tormlb_1". Team codes are the MLB gameday
// codes and the trailing game number is 1-based.
type BrooksGameID struct {
	AwayTeamID string
	HomeTeamID string
	Year       int
	Month      int
	Day        int
	GameNumber int
}

func ParseBrooksGameID(s string) (BrooksGameID, error) {
	if len(s) != 30 {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' must be 30 characters", ErrInvalidGameID, s)
	}
	fields := strings.Split(s, "_")
	if len(fields) != 7 || fields[0] != "gid" {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' must look like gid_YYYY_MM_DD_aaaTLL_hhhTLL_N", ErrInvalidGameID, s)
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' year: %v", ErrInvalidGameID, s, err)
	}
	month, err := strconv.Atoi(fields[2])
	if err != nil {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' month: %v", ErrInvalidGameID, s, err)
	}
	day, err := strconv.Atoi(fields[3])
	if err != nil {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' day: %v", ErrInvalidGameID, s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' is not a real date", ErrInvalidGameID, s)
	}

	away, err := parseBrooksTeamField(s, fields[4])
	if err != nil {
		return BrooksGameID{}, err
	}
	home, err := parseBrooksTeamField(s, fields[5])
	if err != nil {
		return BrooksGameID{}, err
	}

	gameNumber, err := strconv.Atoi(fields[6])
	if err != nil || gameNumber < 1 || gameNumber > 2 {
		return BrooksGameID{}, fmt.Errorf("%w: '%s' game number must be 1 or 2", ErrInvalidGameID, s)
	}

	return BrooksGameID{
		AwayTeamID: away,
		HomeTeamID: home,
		Year:       year,
		Month:      month,
		Day:        day,
		GameNumber: gameNumber,
	}, nil
}

func parseBrooksTeamField(id, field string) (string, error) {
	if len(field) != 6 || !strings.HasSuffix(field, "mlb") {
		return "", fmt.Errorf("%w: '%s' team field '%s' must be a 3 letter code suffixed 'mlb'", ErrInvalidGameID, id, field)
	}
	code := field[0:3]
	if code != strings.ToLower(code) {
		return "", fmt.Errorf("%w: '%s' team field '%s' must be lowercase", ErrInvalidGameID, id, field)
	}
	return strings.ToUpper(code), nil
}

func (id BrooksGameID) String() string {
	return fmt.Sprintf(
		"gid_%04d_%02d_%02d_%smlb_%smlb_%d",
		id.Year, id.Month, id.Day,
		strings.ToLower(id.AwayTeamID),
		strings.ToLower(id.HomeTeamID),
		id.GameNumber,
	)
}

func (id BrooksGameID) DateStr() string {
	return fmt.Sprintf("%04d-%02d-%02d", id.Year, id.Month, id.Day)
}

// ToBBRef converts to the bbref id for the same game. Whether the
// game was part of a doubleheader changes the game-of-day digit, and
// only the daily index knows that, so the caller must say.
func (id BrooksGameID) ToBBRef(doubleheader bool) BBRefGameID {
	gameOfDay := 0
	if doubleheader {
		gameOfDay = id.GameNumber
	}
	return BBRefGameID{
		HomeTeamID: BBRefTeamID(id.HomeTeamID),
		Year:       id.Year,
		Month:      id.Month,
		Day:        id.Day,
		GameOfDay:  gameOfDay,
	}
}

// PitchAppID identifies one pitching appearance within a game.
func PitchAppID(bbrefGameID string, pitcherID int64) string {
	return fmt.Sprintf("%s_%d", bbrefGameID, pitcherID)
}
