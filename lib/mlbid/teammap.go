package mlbid

import "strings"

// bbref and brooksbaseball disagree on 13 franchise codes, everything
// else is shared. Values here are the brooks (MLB gameday) codes.
var bbrefToBrooks = map[string]string{
	"CHC": "CHN",
	"CHW": "CHA",
	"FLA": "FLO",
	"KCR": "KCA",
	"LAA": "ANA",
	"LAD": "LAN",
	"NYM": "NYN",
	"NYY": "NYA",
	"SDP": "SDN",
	"SFG": "SFN",
	"STL": "SLN",
	"TBR": "TBA",
	"WSN": "WAS",
}

var brooksToBBRef = func() map[string]string {
	m := make(map[string]string, len(bbrefToBrooks))
	for bbref, brooks := range bbrefToBrooks {
		m[brooks] = bbref
	}
	return m
}()

// BrooksTeamID maps a bbref team code to its brooks equivalent,
// returning the input unchanged when the sites agree.
func BrooksTeamID(bbref string) string {
	bbref = strings.ToUpper(bbref)
	if brooks, ok := bbrefToBrooks[bbref]; ok {
		return brooks
	}
	return bbref
}

// BBRefTeamID is the inverse of BrooksTeamID.
func BBRefTeamID(brooks string) string {
	brooks = strings.ToUpper(brooks)
	if bbref, ok := brooksToBBRef[brooks]; ok {
		return bbref
	}
	return brooks
}
