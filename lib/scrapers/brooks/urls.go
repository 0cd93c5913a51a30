package brooks

import (
	"fmt"
	"regexp"
	"time"
)

const baseURL = "http://www.brooksbaseball.net"

func DashboardURL(date time.Time) string {
	return fmt.Sprintf(
		"%s/dashboard.php?dts=%02d/%02d/%d",
		baseURL, int(date.Month()), date.Day(), date.Year(),
	)
}

var gameIDParamRegex = regexp.MustCompile(`game=(gid_\d{4}_\d{2}_\d{2}_[a-z]{6}_[a-z]{6}_\d)`)
var pitcherParamRegex = regexp.MustCompile(`pitchSel=(\d+)`)

// GameIDFromURL pulls the brooks game id out of a tool link's query
// string.
func GameIDFromURL(url string) (string, error) {
	m := gameIDParamRegex.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("cannot find brooks game id in url '%s'", url)
	}
	return m[1], nil
}

// PitcherIDFromURL pulls the mlb pitcher id out of a pitch log link.
func PitcherIDFromURL(url string) (string, bool) {
	m := pitcherParamRegex.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
