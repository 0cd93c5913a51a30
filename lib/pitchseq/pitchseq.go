package pitchseq

import "fmt"

// The bbref play-by-play pitch sequence alphabet. Every pitch thrown
// is one character; '*' is a modifier on the following character.
const (
	strikeTokens   = "CSTKLMOQ"
	foulTokens     = "FR"
	ballTokens     = "BIPV"
	terminalTokens = "XHY"
)

var ErrUnknownToken = fmt.Errorf("unknown pitch sequence token")

// Pitch is one resolved token of a pitch sequence.
type Pitch struct {
	Token          byte
	CatcherBlocked bool
}

func contains(set string, c byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			return true
		}
	}
	return false
}

// Tokenize resolves a raw sequence string into pitches, folding the
// '*' catcher-blocked modifier into the pitch that follows it. The
// legacy 'U' (unknown pitch) token fails the parse.
func Tokenize(seq string) ([]Pitch, error) {
	var pitches []Pitch
	blocked := false

	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c == '*' {
			blocked = true
			continue
		}
		if c == '.' || c == ' ' {
			// non-pitch annotations (runner events) are not pitches
			continue
		}
		if !contains(strikeTokens+foulTokens+ballTokens+terminalTokens, c) {
			return nil, fmt.Errorf("%w: '%c' at position %d of '%s'", ErrUnknownToken, c, i, seq)
		}
		pitches = append(pitches, Pitch{Token: c, CatcherBlocked: blocked})
		blocked = false
	}
	if blocked {
		return nil, fmt.Errorf("%w: trailing '*' in '%s'", ErrUnknownToken, seq)
	}
	return pitches, nil
}

// Count returns the number of pitches thrown in a sequence. Contact
// tokens count as pitches.
func Count(seq string) (int, error) {
	pitches, err := Tokenize(seq)
	if err != nil {
		return 0, err
	}
	return len(pitches), nil
}

// FinalCount walks a sequence and returns the ball/strike count it
// accumulates. Fouls only add a strike below two strikes.
func FinalCount(seq string) (balls int, strikes int, err error) {
	pitches, err := Tokenize(seq)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range pitches {
		switch {
		case contains(strikeTokens, p.Token):
			strikes++
		case contains(foulTokens, p.Token):
			if strikes < 2 {
				strikes++
			}
		case contains(ballTokens, p.Token):
			balls++
		}
	}
	return balls, strikes, nil
}

// IsCompleteAtBat reports whether a pitch sequence resolves a plate
// appearance: it ends with a contact token, or it reached three
// strikes or four balls.
func IsCompleteAtBat(seq string) (bool, error) {
	pitches, err := Tokenize(seq)
	if err != nil {
		return false, err
	}
	if len(pitches) == 0 {
		return false, nil
	}
	if contains(terminalTokens, pitches[len(pitches)-1].Token) {
		return true, nil
	}
	balls, strikes, err := FinalCount(seq)
	if err != nil {
		return false, err
	}
	return strikes >= 3 || balls >= 4, nil
}
