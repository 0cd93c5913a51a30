package bbref

import (
	"fmt"
	"strings"
	"time"
)

const baseURL = "https://www.baseball-reference.com"

func DashboardURL(date time.Time) string {
	return fmt.Sprintf(
		"%s/boxes/?month=%d&day=%d&year=%d",
		baseURL, int(date.Month()), date.Day(), date.Year(),
	)
}

func BoxscoreURL(gameID string) string {
	return fmt.Sprintf("%s/boxes/%s/%s.shtml", baseURL, gameID[0:3], gameID)
}

// GameIDFromURL pulls the bbref game id out of a boxscore url like
// https://www.baseball-reference.com/boxes/TOR/TOR201906170.shtml
func GameIDFromURL(url string) (string, error) {
	trimmed := strings.TrimSuffix(url, ".shtml")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", fmt.Errorf("cannot find game id in url '%s'", url)
	}
	id := trimmed[idx+1:]
	if len(id) != 12 {
		return "", fmt.Errorf("cannot find game id in url '%s'", url)
	}
	return id, nil
}
