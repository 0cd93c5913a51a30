package patch

import (
	"context"
	"encoding/json"
	"testing"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"

	"github.com/stretchr/testify/require"
)

func brooksIndexFixture() brooks.GamesForDate {
	return brooks.GamesForDate{
		Tag:         true,
		GameDateStr: "2019-06-21",
		GameCount:   2,
		Games: []brooks.GameInfo{
			{BrooksGameID: "gid_2019_06_21_anamlb_seamlb_1", BBRefGameID: "SEA201906210"},
			{BrooksGameID: "gid_2019_06_21_nyamlb_bosmlb_1", BBRefGameID: "BOS201906210"},
		},
	}
}

func TestPatchBrooksGamesForDate(t *testing.T) {
	list := List{Actions: []Action{
		PatchBrooksGamesForDateBBRefGameID{
			BrooksGameID: "gid_2019_06_21_anamlb_seamlb_1",
			BBRefGameID:  "SEA201906211",
		},
		PatchBrooksGamesForDateRemoveGame{
			BrooksGameID: "gid_2019_06_21_nyamlb_bosmlb_1",
		},
	}}

	doc := brooksIndexFixture()
	require.NoError(t, list.Apply(&doc))

	require.Equal(t, 1, doc.GameCount)
	require.Len(t, doc.Games, 1)
	require.Equal(t, "SEA201906211", doc.Games[0].BBRefGameID)

	// a second application changes nothing
	once, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, list.Apply(&doc))
	twice, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Equal(t, string(once), string(twice))
}

func TestPatchBBRefGamesForDateGameID(t *testing.T) {
	doc := bbref.GamesForDate{
		GameCount: 2,
		BoxscoreURLs: []string{
			"https://www.baseball-reference.com/boxes/MIL/MIL201709150.shtml",
			"https://www.baseball-reference.com/boxes/SEA/SEA201709150.shtml",
		},
	}
	list := List{Actions: []Action{
		PatchBBRefGamesForDateGameID{
			InvalidGameID: "MIL201709150",
			CorrectGameID: "MIA201709150",
		},
	}}

	require.NoError(t, list.Apply(&doc))
	require.Equal(t, 2, doc.GameCount)
	require.Contains(t, doc.BoxscoreURLs[0], "MIA201709150")

	// once the invalid id is gone, re-applying must not duplicate
	// the corrected game
	require.NoError(t, list.Apply(&doc))
	require.Equal(t, 2, doc.GameCount)
}

func TestPatchBBRefGamesForDateGameIDAddsMissingGame(t *testing.T) {
	doc := bbref.GamesForDate{
		GameCount: 1,
		BoxscoreURLs: []string{
			"https://www.baseball-reference.com/boxes/SEA/SEA201709150.shtml",
		},
	}
	list := List{Actions: []Action{
		PatchBBRefGamesForDateGameID{
			InvalidGameID: "MIL201709150",
			CorrectGameID: "MIA201709150",
		},
	}}

	require.NoError(t, list.Apply(&doc))
	require.Equal(t, 2, doc.GameCount)
}

func TestPatchBoxscore(t *testing.T) {
	doc := bbref.Boxscore{
		Tag:    true,
		GameID: "OAK201904030",
		InningsList: []bbref.HalfInning{{
			InningID: "OAK201904030_INN_TOP01",
			GameEvents: []bbref.PlayByPlayEvent{{
				EventID:       "OAK201904030_EVENT_001",
				PitchSequence: "CBU",
				PitcherID:     "fiersmi01",
				BatterID:      "bettsmo01",
			}},
			Substitutions: []bbref.Substitution{{
				IncomingPlayerID: "bettsmo01",
				OutgoingPlayerID: "bradlja02",
			}},
		}},
	}
	list := List{Actions: []Action{
		PatchBBRefBoxscorePitchSequence{
			GameID:        "OAK201904030",
			EventID:       "OAK201904030_EVENT_001",
			PitchSequence: "CBX",
		},
		PatchBBRefBoxscorePlayerID{
			GameID:    "OAK201904030",
			InvalidID: "bettsmo01",
			CorrectID: "bogaexa01",
		},
	}}

	require.NoError(t, list.Apply(&doc))
	event := doc.InningsList[0].GameEvents[0]
	require.Equal(t, "CBX", event.PitchSequence)
	require.Equal(t, "bogaexa01", event.BatterID)
	require.Equal(t, "bogaexa01", doc.InningsList[0].Substitutions[0].IncomingPlayerID)

	// actions scoped to another game leave the document alone
	other := List{Actions: []Action{
		PatchBBRefBoxscorePitchSequence{
			GameID:        "SEA201904030",
			EventID:       "OAK201904030_EVENT_001",
			PitchSequence: "BBBB",
		},
	}}
	require.NoError(t, other.Apply(&doc))
	require.Equal(t, "CBX", doc.InningsList[0].GameEvents[0].PitchSequence)
}

func TestPatchPitchFxBatterID(t *testing.T) {
	doc := brooks.PitchFxLog{
		Tag:        true,
		PitchAppID: "OAK201904030_605525",
		PitchFxRows: []brooks.PitchFxRow{
			{ABID: 2019000101, BatterID: 519048},
			{ABID: 2019000101, BatterID: 519048},
			{ABID: 2019000102, BatterID: 646240},
		},
	}
	list := List{Actions: []Action{
		PatchBrooksPitchFxBatterID{
			PitchAppID: "OAK201904030_605525",
			ABID:       2019000101,
			CorrectID:  502110,
		},
	}}

	require.NoError(t, list.Apply(&doc))
	require.Equal(t, int64(502110), doc.PitchFxRows[0].BatterID)
	require.Equal(t, int64(502110), doc.PitchFxRows[1].BatterID)
	require.Equal(t, int64(646240), doc.PitchFxRows[2].BatterID)
}

func TestCodecRoundTrip(t *testing.T) {
	list := List{Actions: []Action{
		PatchBrooksGamesForDateBBRefGameID{
			BrooksGameID: "gid_2019_06_21_anamlb_seamlb_1",
			BBRefGameID:  "SEA201906211",
		},
		PatchBrooksPitchFxBatterID{
			PitchAppID: "OAK201904030_605525",
			ABID:       2019000101,
			CorrectID:  502110,
		},
	}}

	data, err := EncodeList(list)
	require.NoError(t, err)

	decoded, err := DecodeList(data)
	require.NoError(t, err)
	require.Len(t, decoded.Actions, 2)

	first, ok := decoded.Actions[0].(PatchBrooksGamesForDateBBRefGameID)
	require.True(t, ok)
	require.Equal(t, "SEA201906211", first.BBRefGameID)
	require.True(t, first.Tag)
}

func TestDecodeListRejectsUnknownTag(t *testing.T) {
	_, err := DecodeList([]byte(`[{"__patch_made_up__": true}]`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no recognized patch tag")
}

func TestApplyFromStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	key := blobstore.JSONKey(2019, blobstore.BrooksGamesForDate, "brooks_games_for_date_2019-06-21")

	doc := brooksIndexFixture()
	applied, err := ApplyFromStore(ctx, store, key, &doc)
	require.NoError(t, err)
	require.False(t, applied)

	data, err := EncodeList(List{Actions: []Action{
		PatchBrooksGamesForDateRemoveGame{
			BrooksGameID: "gid_2019_06_21_nyamlb_bosmlb_1",
		},
	}})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, blobstore.PatchListKey(key), data))

	applied, err = ApplyFromStore(ctx, store, key, &doc)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, 1, doc.GameCount)
}
