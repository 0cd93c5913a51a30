package bbref

import (
	"fmt"
	"regexp"
	"strings"
)

var positionNames = map[string]string{
	"pitcher":      "P",
	"catcher":      "C",
	"first base":   "1B",
	"second base":  "2B",
	"third base":   "3B",
	"shortstop":    "SS",
	"left field":   "LF",
	"center field": "CF",
	"right field":  "RF",
	"designated hitter": "DH",
}

func normalizePosition(raw string) string {
	raw = strings.Trim(strings.ToLower(raw), " .")
	if code, ok := positionNames[raw]; ok {
		return code
	}
	return strings.ToUpper(raw)
}

var battingSlotRegex = regexp.MustCompile(`batting (\d+)(?:st|nd|rd|th)`)

var (
	replacesRegex  = regexp.MustCompile(`(?i)^(?:pitching change:\s*)?(.+?) replaces (.+?)(?:\s+(?:pitching|playing (.+?)))?(?:,?\s*batting \d+(?:st|nd|rd|th))?\.?$`)
	pinchHitRegex  = regexp.MustCompile(`(?i)^(.+?) pinch[- ]hits? for (.+?)(?:\s+\((.+?)\))?\.?$`)
	pinchRunRegex  = regexp.MustCompile(`(?i)^(.+?) pinch[- ]runs? for (.+?)\.?$`)
	movesRegex     = regexp.MustCompile(`(?i)^(.+?) moves (?:from (.+?) )?to (.+?)\.?$`)
)

var substitutionCues = []string{
	"replaces", "pinch hit for", "pinch hits for", "pinch runs for",
	"pinch runs", "moves", "pitching change",
}

func looksLikeSubstitution(description string) bool {
	lower := strings.ToLower(description)
	for _, cue := range substitutionCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// ParseSubstitution resolves a play-by-play substitution description
// through a cascade of recognized phrasings. The returned incoming
// and outgoing fields carry display *names*; the caller resolves
// them to player ids. Unrecognized phrasing fails with a diagnostic.
func ParseSubstitution(description string) (Substitution, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Substitution{}, fmt.Errorf("empty substitution description")
	}

	slot := 0
	if m := battingSlotRegex.FindStringSubmatch(strings.ToLower(description)); m != nil {
		slot = atoi(m[1])
	}

	if m := pinchHitRegex.FindStringSubmatch(description); m != nil && strings.Contains(strings.ToLower(description), "pinch") && strings.Contains(strings.ToLower(description), "hit") {
		return Substitution{
			Kind:             SubPinchHit,
			IncomingPlayerID: strings.TrimSpace(m[1]),
			OutgoingPlayerID: strings.TrimSpace(m[2]),
			IncomingPosition: "PH",
			OutgoingPosition: normalizePosition(m[3]),
			LineupSlot:       slot,
			Description:      description,
		}, nil
	}

	if m := pinchRunRegex.FindStringSubmatch(description); m != nil {
		return Substitution{
			Kind:             SubPinchRun,
			IncomingPlayerID: strings.TrimSpace(m[1]),
			OutgoingPlayerID: strings.TrimSpace(m[2]),
			IncomingPosition: "PR",
			LineupSlot:       slot,
			Description:      description,
		}, nil
	}

	if m := replacesRegex.FindStringSubmatch(description); m != nil {
		kind := SubDefensive
		position := normalizePosition(m[3])
		if strings.Contains(strings.ToLower(description), "pitching") || position == "P" {
			kind = SubPitching
			position = "P"
		}
		return Substitution{
			Kind:             kind,
			IncomingPlayerID: strings.TrimSpace(m[1]),
			OutgoingPlayerID: strings.TrimSpace(m[2]),
			IncomingPosition: position,
			LineupSlot:       slot,
			Description:      description,
		}, nil
	}

	if m := movesRegex.FindStringSubmatch(description); m != nil {
		return Substitution{
			Kind:             SubPositionMove,
			IncomingPlayerID: strings.TrimSpace(m[1]),
			IncomingPosition: normalizePosition(m[3]),
			OutgoingPosition: normalizePosition(m[2]),
			LineupSlot:       slot,
			Description:      description,
		}, nil
	}

	return Substitution{}, fmt.Errorf("unrecognized substitution phrasing: '%s'", description)
}
