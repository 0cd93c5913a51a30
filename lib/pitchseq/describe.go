package pitchseq

import (
	"fmt"
	"strings"
)

var tokenDescriptions = map[byte]string{
	'C': "Called strike",
	'S': "Swinging strike",
	'F': "Foul",
	'B': "Ball",
	'X': "Batter put the ball in play",
	'T': "Foul tip",
	'K': "Strike (unknown type)",
	'I': "Intentional ball",
	'H': "Batter hit by pitch",
	'L': "Foul bunt",
	'M': "Missed bunt attempt",
	'O': "Foul tip on bunt",
	'P': "Pitchout",
	'Q': "Swinging strike on pitchout",
	'R': "Foul ball on pitchout",
	'V': "Automatic ball",
	'Y': "Batter put the ball in play on pitchout",
}

// Measurement carries the pitchfx columns that enrich a rendered
// pitch description. Keys of the map passed to Describe are 1-based
// pitch numbers.
type Measurement struct {
	Speed     float64
	PitchType string
}

// Describe renders a pitch sequence as one human readable line per
// pitch plus the play description as the terminal line.
func Describe(seq string, playDescription string, measurements map[int]Measurement) ([]string, error) {
	pitches, err := Tokenize(seq)
	if err != nil {
		return nil, err
	}

	total := len(pitches)
	lines := make([]string, 0, total+1)
	for i, p := range pitches {
		desc := tokenDescriptions[p.Token]
		if p.CatcherBlocked {
			desc = fmt.Sprintf("%s (catcher blocked the pitch)", desc)
		}

		line := fmt.Sprintf("Pitch %d/%d: %s", i+1, total, desc)
		if m, ok := measurements[i+1]; ok && m.PitchType != "" {
			line = fmt.Sprintf("%s (%.0fmph %s)", line, m.Speed, m.PitchType)
		}
		lines = append(lines, line)
	}
	if playDescription != "" {
		lines = append(lines, strings.TrimSpace(playDescription))
	}
	return lines, nil
}
