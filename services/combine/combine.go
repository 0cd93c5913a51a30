// Package combine joins a game's play-by-play at-bats with its
// pitchfx measurements into one reconciled document per game.
package combine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"dugout-backend/lib/blobstore"
	"dugout-backend/lib/mlbid"
	"dugout-backend/lib/patch"
	"dugout-backend/lib/pitchseq"
	"dugout-backend/lib/scrapers/bbref"
	"dugout-backend/lib/scrapers/brooks"
	"dugout-backend/services/status"
	"dugout-backend/services/status/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/combine")

// ErrReconcileFailure is returned when pitchfx carries at-bats the
// play-by-play does not know about.
var ErrReconcileFailure = errors.New("pitchfx at-bats have no play-by-play equivalent")

// ErrAlreadyRunning is returned when another worker holds the game's
// combine lease.
var ErrAlreadyRunning = errors.New("combine already running for game")

type Service struct {
	status status.Service
	store  blobstore.Store
}

func NewService(statusSvc status.Service, store blobstore.Store) Service {
	return Service{status: statusSvc, store: store}
}

// appKey ties a pitchfx row back to its pitching appearance for the
// patched-at-bat bookkeeping.
type appKey struct {
	pitchAppID string
	abID       int64
}

// CombineGame runs the whole reconciliation for one game, persists
// the combined document, and records the outcome in the ledger. The
// per-game lease guarantees a single worker per game.
func (s Service) CombineGame(ctx context.Context, gameIDStr string) (CombinedGame, error) {
	ctx, span := tracer.Start(ctx, "CombineGame")
	defer span.End()
	span.SetAttributes(attribute.String("game_id", gameIDStr))

	gameID, err := mlbid.ParseBBRefGameID(gameIDStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CombinedGame{}, err
	}

	gameStatus, err := s.status.Queries().GetGameStatus(ctx, gameIDStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CombinedGame{}, fmt.Errorf("game %s is not in the ledger: %w", gameIDStr, err)
	}
	if !gameStatus.ScrapedBoxscore || !gameStatus.ScrapedPitchLogs || !gameStatus.AllPitchfxScraped {
		err := fmt.Errorf(
			"%w: game %s boxscore=%v pitch_logs=%v all_pitchfx=%v",
			status.ErrPreconditionUnmet, gameIDStr,
			gameStatus.ScrapedBoxscore, gameStatus.ScrapedPitchLogs, gameStatus.AllPitchfxScraped,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CombinedGame{}, err
	}

	acquired, err := s.status.AcquireCombineLease(ctx, gameIDStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CombinedGame{}, err
	}
	if !acquired {
		return CombinedGame{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, gameIDStr)
	}
	defer func() {
		if err := s.status.ReleaseCombineLease(ctx, gameIDStr); err != nil {
			slog.WarnContext(ctx, "failed to release combine lease", "game_id", gameIDStr, "err", err)
		}
	}()

	doc, result, err := s.combine(ctx, gameID, gameStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		failure := status.CombineResult{GameID: gameIDStr, Fail: true}
		if recordErr := s.status.RecordCombineResult(ctx, failure); recordErr != nil {
			slog.ErrorContext(ctx, "failed to record combine failure", "game_id", gameIDStr, "err", recordErr)
		}
		return CombinedGame{}, err
	}

	if err := s.status.RecordCombineResult(ctx, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CombinedGame{}, err
	}

	span.SetAttributes(
		attribute.Int("at_bat_count", len(doc.AtBats)),
		attribute.Bool("all_pitchfx_valid", doc.Audit.AllPitchFxValid),
	)
	return doc, nil
}

func (s Service) combine(
	ctx context.Context,
	gameID mlbid.BBRefGameID,
	gameStatus db.GameStatus,
) (CombinedGame, status.CombineResult, error) {
	gameIDStr := gameID.String()

	box, err := s.loadBoxscore(ctx, gameID)
	if err != nil {
		return CombinedGame{}, status.CombineResult{}, err
	}

	logs, err := s.loadPitchLogs(ctx, gameID, gameStatus.BrooksGameID)
	if err != nil {
		return CombinedGame{}, status.CombineResult{}, err
	}

	gameStart := parseGameStart(gameStatus.GameDate, gameStatus.GameStartTime)

	var allRows []brooks.PitchFxRow
	duplicatesByApp := map[string]int{}
	patchedABIDs := map[appKey]bool{}
	for _, log := range logs.PitchLogs {
		rows, removed, patched, err := s.loadPitchFx(ctx, gameID, log, gameStart)
		if err != nil {
			return CombinedGame{}, status.CombineResult{}, err
		}
		duplicatesByApp[log.PitchAppID] = removed
		for key := range patched {
			patchedABIDs[key] = true
		}
		allRows = append(allRows, rows...)
	}

	pbpAtBats, err := buildPlayByPlayAtBats(box, func(bbrefID string) (int64, error) {
		return s.status.PlayerMlbID(ctx, bbrefID)
	})
	if err != nil {
		return CombinedGame{}, status.CombineResult{}, err
	}

	pfxByAtBat := assignAtBatIDs(gameIDStr, allRows)

	if err := reconcile(pbpAtBats, pfxByAtBat); err != nil {
		return CombinedGame{}, status.CombineResult{}, err
	}

	doc := CombinedGame{
		Tag:          true,
		BBRefGameID:  gameIDStr,
		BrooksGameID: gameStatus.BrooksGameID,
		GameDateStr:  gameStatus.GameDate,
		GameMeta:     box.GameMeta,
	}
	nameByID := invertNameDict(box.PlayerNameDict)

	for _, atBat := range pbpAtBats {
		combined := combineAtBat(atBat, pfxByAtBat[atBat.id.String()], nameByID, patchedABIDs)
		doc.AtBats = append(doc.AtBats, combined)
	}

	doc.Audit = rollUpAudit(doc.AtBats, duplicatesByApp)

	result := buildCombineResult(gameIDStr, doc, duplicatesByApp, logs.PitchLogs)

	if err := s.persist(ctx, gameID, doc); err != nil {
		return CombinedGame{}, status.CombineResult{}, err
	}
	return doc, result, nil
}

func (s Service) loadBoxscore(ctx context.Context, gameID mlbid.BBRefGameID) (bbref.Boxscore, error) {
	key := blobstore.JSONKey(gameID.Year, blobstore.BBRefBoxscores, gameID.String())
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return bbref.Boxscore{}, fmt.Errorf("load boxscore %s: %w", key, err)
	}
	box, err := bbref.DecodeBoxscore(data)
	if err != nil {
		return bbref.Boxscore{}, fmt.Errorf("decode boxscore %s: %w", key, err)
	}
	if _, err := patch.ApplyFromStore(ctx, s.store, key, &box); err != nil {
		return bbref.Boxscore{}, err
	}
	return box, nil
}

func (s Service) loadPitchLogs(ctx context.Context, gameID mlbid.BBRefGameID, brooksGameID string) (brooks.PitchLogsForGame, error) {
	key := blobstore.JSONKey(gameID.Year, blobstore.BrooksPitchLogs, brooksGameID)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return brooks.PitchLogsForGame{}, fmt.Errorf("load pitch logs %s: %w", key, err)
	}
	logs, err := brooks.DecodePitchLogsForGame(data)
	if err != nil {
		return brooks.PitchLogsForGame{}, fmt.Errorf("decode pitch logs %s: %w", key, err)
	}
	return logs, nil
}

// loadPitchFx reads, patches, and dedupes one appearance's pitchfx
// log. A missing blob means the appearance genuinely had no data.
func (s Service) loadPitchFx(
	ctx context.Context,
	gameID mlbid.BBRefGameID,
	log brooks.PitchLog,
	gameStart time.Time,
) ([]brooks.PitchFxRow, int, map[appKey]bool, error) {
	key := blobstore.JSONKey(gameID.Year, blobstore.BrooksPitchFx, log.PitchAppID)
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, blobstore.ErrNotExist) {
		slog.DebugContext(ctx, "no pitchfx data for appearance", "pitch_app_id", log.PitchAppID)
		return nil, 0, nil, nil
	}
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load pitchfx %s: %w", key, err)
	}
	fxLog, err := brooks.DecodePitchFxLog(data)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("decode pitchfx %s: %w", key, err)
	}

	patched := map[appKey]bool{}
	list, ok, err := patch.Load(ctx, s.store, key)
	if err != nil {
		return nil, 0, nil, err
	}
	if ok {
		for _, action := range list.Actions {
			if fix, isFix := action.(patch.PatchBrooksPitchFxBatterID); isFix && fix.PitchAppID == fxLog.PitchAppID {
				patched[appKey{pitchAppID: fxLog.PitchAppID, abID: fix.ABID}] = true
			}
		}
		if err := list.Apply(&fxLog); err != nil {
			return nil, 0, nil, fmt.Errorf("apply patch list for %s: %w", key, err)
		}
	}

	rows, removed := dedupeByGUID(fxLog.PitchFxRows, gameStart)
	return rows, removed, patched, nil
}

func (s Service) persist(ctx context.Context, gameID mlbid.BBRefGameID, doc CombinedGame) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	key := blobstore.JSONKey(gameID.Year, blobstore.CombinedData, gameID.String()+"_COMBINED_DATA")
	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("persist combined game %s: %w", key, err)
	}
	return nil
}

// reconcile checks the two at-bat id sets. Extra ids on the
// play-by-play side are fine (appearances with no pitchfx); extra ids
// on the pitchfx side fail the combine with both sides listed.
func reconcile(pbpAtBats []pbpAtBat, pfxByAtBat map[string][]brooks.PitchFxRow) error {
	pbpSet := map[string]bool{}
	for _, atBat := range pbpAtBats {
		pbpSet[atBat.id.String()] = true
	}

	var extra []string
	for id := range pfxByAtBat {
		if !pbpSet[id] {
			extra = append(extra, id)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)

	pbpIDs := make([]string, 0, len(pbpSet))
	for id := range pbpSet {
		pbpIDs = append(pbpIDs, id)
	}
	sort.Strings(pbpIDs)

	return fmt.Errorf(
		"%w: extra=[%s] play_by_play=[%s]",
		ErrReconcileFailure,
		strings.Join(extra, ", "),
		strings.Join(pbpIDs, ", "),
	)
}

func parseGameStart(gameDate, startTime string) time.Time {
	if startTime == "" {
		t, _ := time.Parse("2006-01-02", gameDate)
		return t
	}
	t, err := time.Parse("2006-01-02 3:04 PM", gameDate+" "+startTime)
	if err != nil {
		t, _ = time.Parse("2006-01-02", gameDate)
	}
	return t
}

func invertNameDict(nameToID map[string]string) map[string]string {
	byID := make(map[string]string, len(nameToID))
	for name, id := range nameToID {
		byID[id] = name
	}
	return byID
}

func buildCombineResult(
	gameID string,
	doc CombinedGame,
	duplicatesByApp map[string]int,
	logs []brooks.PitchLog,
) status.CombineResult {
	type appTally struct {
		audited int
		missing int
		valid   bool
	}
	tallies := map[string]*appTally{}
	for _, log := range logs {
		tallies[log.PitchAppID] = &appTally{valid: true}
	}

	for _, atBat := range doc.AtBats {
		id, err := mlbid.ParseAtBatID(atBat.AtBatID)
		if err != nil {
			continue
		}
		pitchAppID := mlbid.PitchAppID(gameID, id.PitcherID)
		tally, ok := tallies[pitchAppID]
		if !ok {
			tally = &appTally{valid: true}
			tallies[pitchAppID] = tally
		}
		tally.audited += atBat.PitchCountPitchFx - atBat.ExtraRowsRemoved
		tally.missing += len(atBat.MissingPitchNumbers)
		if atBat.Classification == ClassInvalidPitchFx {
			tally.valid = false
		}
	}

	result := status.CombineResult{
		GameID:            gameID,
		Success:           true,
		AllPitchFxValid:   doc.Audit.AllPitchFxValid,
		AuditedPitchCount: doc.Audit.PitchCountAudited,
	}
	appIDs := make([]string, 0, len(tallies))
	for appID := range tallies {
		appIDs = append(appIDs, appID)
	}
	sort.Strings(appIDs)
	for _, appID := range appIDs {
		tally := tallies[appID]
		result.PitchApps = append(result.PitchApps, status.PitchAppCombineResult{
			PitchAppID:           appID,
			Valid:                tally.valid,
			AuditedPitchCount:    tally.audited,
			DuplicateGuidRemoved: duplicatesByApp[appID],
			MissingPitchFxCount:  tally.missing,
		})
	}
	return result
}

// combineAtBat classifies and assembles one at-bat.
func combineAtBat(
	atBat pbpAtBat,
	rows []brooks.PitchFxRow,
	nameByID map[string]string,
	patchedABIDs map[appKey]bool,
) CombinedAtBat {
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].ABCount < rows[b].ABCount })

	// Pitch counts are taken before trailing rows are trimmed; only
	// the emitted rows drop the extras.
	class, missing, kept := classifyAtBat(atBat.expected, rows)
	extraRemoved := len(rows) - len(kept)
	if class == ClassInvalidPitchFx {
		kept = rows
		extraRemoved = 0
	}

	patched := false
	if class != ClassInvalidPitchFx {
		for _, row := range kept {
			key := appKey{
				pitchAppID: mlbid.PitchAppID(atBat.id.GameID, row.PitcherID),
				abID:       row.ABID,
			}
			if patchedABIDs[key] {
				patched = true
				break
			}
		}
	}

	combined := CombinedAtBat{
		AtBatID:             atBat.id.String(),
		InningID:            atBat.inningID,
		RowNumber:           atBat.final.RowNumber,
		Classification:      class,
		Patched:             patched,
		PitcherIDBr:         atBat.final.PitcherID,
		PitcherIDMlb:        atBat.id.PitcherID,
		PitcherName:         nameByID[atBat.final.PitcherID],
		BatterIDBr:          atBat.final.BatterID,
		BatterIDMlb:         atBat.id.BatterID,
		BatterName:          nameByID[atBat.final.BatterID],
		PitchCountBBRef:     atBat.expected,
		PitchCountPitchFx:   len(rows),
		MissingPitchNumbers: missing,
		ExtraRowsRemoved:    extraRemoved,
		PitchSequence:       atBat.final.PitchSequence,
		PlayByPlayEvents:    atBat.events,
		Substitutions:       atBat.subs,
		PitchFxRows:         kept,
	}

	measurements := map[int]pitchseq.Measurement{}
	for _, row := range kept {
		measurements[row.ABCount] = pitchseq.Measurement{
			Speed:     row.StartSpeed,
			PitchType: row.PitchTypeCode,
		}
	}
	desc, err := pitchseq.Describe(atBat.final.PitchSequence, atBat.final.PlayDescription, measurements)
	if err == nil {
		combined.PitchSequenceDesc = desc
	}
	return combined
}

// classifyAtBat applies the §4.5 step 5 rules: complete when the rows
// cover pitch numbers 1..expected exactly; missing when the gap size
// matches the shortfall; extra-removed when only trailing rows past
// the expected count spoil the cover; invalid otherwise.
func classifyAtBat(expected int, rows []brooks.PitchFxRow) (string, []int, []brooks.PitchFxRow) {
	seen := map[int]bool{}
	inRange := make([]brooks.PitchFxRow, 0, len(rows))
	duplicate := false
	for _, row := range rows {
		if row.ABCount >= 1 && row.ABCount <= expected {
			if seen[row.ABCount] {
				duplicate = true
			}
			seen[row.ABCount] = true
			inRange = append(inRange, row)
		}
	}
	if duplicate {
		return ClassInvalidPitchFx, nil, nil
	}

	var missing []int
	for n := 1; n <= expected; n++ {
		if !seen[n] {
			missing = append(missing, n)
		}
	}

	switch {
	case len(rows) == expected && len(missing) == 0:
		return ClassComplete, nil, rows
	case len(rows) < expected && len(missing) == expected-len(rows):
		return ClassMissingPitchFx, missing, rows
	case len(rows) > expected && len(missing) == 0:
		return ClassExtraPitchFxRemoved, nil, inRange
	default:
		return ClassInvalidPitchFx, nil, nil
	}
}

func rollUpAudit(atBats []CombinedAtBat, duplicatesByApp map[string]int) GameAudit {
	audit := GameAudit{AllPitchFxValid: true}
	for _, dup := range duplicatesByApp {
		audit.DuplicateGuidRemovedCount += dup
	}

	for _, atBat := range atBats {
		audit.BattersFacedBBRef++
		if atBat.PitchCountPitchFx > 0 {
			audit.BattersFacedPitchFx++
		}
		audit.PitchCountBBRef += atBat.PitchCountBBRef
		audit.PitchCountPitchFx += atBat.PitchCountPitchFx
		audit.MissingPitchFxCount += len(atBat.MissingPitchNumbers)
		audit.ExtraPitchFxRemovedCount += atBat.ExtraRowsRemoved

		switch atBat.Classification {
		case ClassComplete:
			audit.AtBatsComplete++
		case ClassMissingPitchFx:
			audit.AtBatsMissingPitchFx++
			audit.AtBatIDsMissingPitchFx = append(audit.AtBatIDsMissingPitchFx, atBat.AtBatID)
		case ClassExtraPitchFxRemoved:
			audit.AtBatsExtraPitchFxRemoved++
			audit.AtBatIDsExtraRemoved = append(audit.AtBatIDsExtraRemoved, atBat.AtBatID)
		case ClassInvalidPitchFx:
			audit.AtBatsInvalidPitchFx++
			audit.AtBatIDsInvalidPitchFx = append(audit.AtBatIDsInvalidPitchFx, atBat.AtBatID)
			audit.PitchFxError = true
			audit.InvalidPitchFx = true
			audit.AllPitchFxValid = false
		}
		if atBat.Patched {
			audit.AtBatIDsPatchedPitchFx = append(audit.AtBatIDsPatchedPitchFx, atBat.AtBatID)
		}
	}

	audit.PitchCountAudited = audit.PitchCountPitchFx - audit.ExtraPitchFxRemovedCount
	return audit
}
