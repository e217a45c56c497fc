package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
)

const (
	defaultHistoryLimit = 20
	defaultMaxHistory   = 500
	defaultLabelStep    = 10 * time.Second
)

// Service exposes the dashboard capabilities.
type Service interface {
	Predict(ctx context.Context, input PredictionInput) (Dashboard, error)
	Record(ctx context.Context, snapshot metrics.Snapshot) (Dashboard, error)
	Current(ctx context.Context) (Dashboard, error)
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
}

type service struct {
	cfg       Config
	predictor Predictor
	history   HistoryRepository
	state     StateStore
	events    EventPublisher
	archive   ReportArchive
	observer  Observer
	logger    *slog.Logger
	synth     metrics.Synthesizer
	now       func() time.Time
	newID     func() string

	// mu serializes every access to store; the store itself is unsynchronized.
	mu           sync.Mutex
	store        *metrics.Store
	loaded       bool
	pendingCount int
	pendingTail  []metrics.Snapshot
	lastID       string
	updatedAt    time.Time
	seq          uint64

	persistMu sync.Mutex
	savedSeq  uint64
}

// NewService wires up the dashboard domain.
func NewService(
	cfg Config,
	predictor Predictor,
	history HistoryRepository,
	state StateStore,
	events EventPublisher,
	archive ReportArchive,
	observer Observer,
	logger *slog.Logger,
) Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = defaultMaxHistory
	}
	if cfg.LabelStep <= 0 {
		cfg.LabelStep = defaultLabelStep
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &service{
		cfg:       cfg,
		predictor: predictor,
		history:   history,
		state:     state,
		events:    events,
		archive:   archive,
		observer:  observer,
		logger:    logger.With("component", "dashboard.service"),
		synth:     metrics.NewSynthesizer(cfg.Shaping),
		now:       nowUTC,
		newID:     uuid.NewString,
		store:     metrics.NewStore(),
	}
}

func (s *service) Predict(ctx context.Context, input PredictionInput) (Dashboard, error) {
	clean, err := validateInput(input)
	if err != nil {
		return Dashboard{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	snapshot, err := s.predictor.Predict(ctx, clean)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			s.observer.PredictionFailed(apperrors.CodeInvalidInput)
			return Dashboard{}, err
		}
		s.observer.PredictionFailed(apperrors.CodePredictorError)
		return Dashboard{}, apperrors.Wrap(apperrors.CodePredictorError, "prediction request failed", err)
	}
	if err := validateSnapshot(snapshot); err != nil {
		s.observer.PredictionFailed(apperrors.CodePredictorError)
		return Dashboard{}, apperrors.Wrap(apperrors.CodePredictorError, "predictor returned invalid values", err)
	}
	s.logger.Info("prediction received", "shape", clean.Shape, "qout", snapshot.Qout, "qloss", snapshot.Qloss, "efficiency", snapshot.Efficiency)

	return s.apply(ctx, snapshot, SourcePredictor), nil
}

func (s *service) Record(ctx context.Context, snapshot metrics.Snapshot) (Dashboard, error) {
	if err := validateSnapshot(snapshot); err != nil {
		return Dashboard{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	return s.apply(ctx, snapshot, SourceManual), nil
}

func (s *service) Current(ctx context.Context) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	return s.buildLocked(), nil
}

func (s *service) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	if limit > s.cfg.MaxHistory {
		limit = s.cfg.MaxHistory
	}
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to load snapshot history", err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

// apply shifts the store under the lock and then fans the result out to the
// collaborators. Collaborator failures are logged; the dashboard is built
// either way.
func (s *service) apply(ctx context.Context, snapshot metrics.Snapshot, source Source) Dashboard {
	s.mu.Lock()
	loaded := s.ensureLoadedLocked(ctx)
	s.store.Update(snapshot)
	if !loaded {
		s.trackPendingLocked(snapshot)
	}
	s.lastID = s.newID()
	s.updatedAt = s.now().UTC()
	s.seq++
	seq := s.seq
	dash := s.buildLocked()
	state := StoredState{
		ID:        s.lastID,
		Previous:  s.store.Previous(),
		Current:   s.store.Current(),
		Updates:   s.store.Updates(),
		UpdatedAt: s.updatedAt,
	}
	s.mu.Unlock()

	s.observer.SnapshotApplied(string(source))

	entry := HistoryEntry{ID: state.ID, Source: source, Snapshot: snapshot, RecordedAt: state.UpdatedAt}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("append snapshot history failed", "id", entry.ID, "error", err)
	}

	if loaded {
		s.persist(ctx, seq, state)
	} else {
		s.logger.Warn("snapshot state not loaded, skipping persist", "id", state.ID)
	}

	event := Event{
		ID:         state.ID,
		Source:     source,
		Current:    dash.Current,
		Previous:   dash.Previous,
		Trends:     dash.Trends,
		RecordedAt: state.UpdatedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish snapshot event failed", "id", event.ID, "error", err)
	}

	if s.cfg.ArchiveReports {
		s.archiveDashboard(ctx, state.UpdatedAt, dash)
	}

	s.logger.Info("snapshot applied", "id", state.ID, "source", source, "updates", state.Updates)
	return dash
}

// persist saves state unless a later update has already been saved.
func (s *service) persist(ctx context.Context, seq uint64, state StoredState) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.savedSeq {
		return
	}
	if err := s.state.Save(ctx, state); err != nil {
		s.logger.Warn("persist snapshot state failed", "id", state.ID, "error", err)
		return
	}
	s.savedSeq = seq
}

func (s *service) archiveDashboard(ctx context.Context, ts time.Time, dash Dashboard) {
	payload, err := json.Marshal(dash)
	if err != nil {
		s.logger.Error("marshal dashboard report failed", "id", dash.ID, "error", err)
		return
	}
	key := reportKey(ts, dash.ID)
	if err := s.archive.Put(ctx, key, payload); err != nil {
		s.logger.Warn("archive dashboard report failed", "key", key, "error", err)
	}
}

// trackPendingLocked remembers updates applied before the persisted state
// could be read. Only the last two matter for the pair.
func (s *service) trackPendingLocked(snapshot metrics.Snapshot) {
	s.pendingCount++
	s.pendingTail = append(s.pendingTail, snapshot)
	if len(s.pendingTail) > 2 {
		s.pendingTail = s.pendingTail[len(s.pendingTail)-2:]
	}
}

// ensureLoadedLocked reads the persisted pair once. A failed read is retried
// on the next call and reports false so nothing overwrites the stored state.
func (s *service) ensureLoadedLocked(ctx context.Context) bool {
	if s.loaded {
		return true
	}
	state, found, err := s.state.Load(ctx)
	if err != nil {
		s.logger.Warn("load snapshot state failed, will retry", "error", err)
		return false
	}
	s.loaded = true
	if !found {
		s.pendingTail = nil
		return true
	}

	lastID, updatedAt := state.ID, state.UpdatedAt
	if s.pendingCount > 0 {
		lastID, updatedAt = s.lastID, s.updatedAt
	}
	s.store.Restore(state.Previous, state.Current, state.Updates+s.pendingCount-len(s.pendingTail))
	for _, snapshot := range s.pendingTail {
		s.store.Update(snapshot)
	}
	s.lastID = lastID
	s.updatedAt = updatedAt
	s.logger.Info("snapshot state restored", "id", state.ID, "updates", state.Updates, "replayed", s.pendingCount)
	s.pendingCount = 0
	s.pendingTail = nil
	return true
}

func (s *service) buildLocked() Dashboard {
	current := s.store.Current()
	previous := s.store.Previous()
	loss, net := s.synth.LossCurves(current.Qloss, current.Qout)

	dash := Dashboard{
		ID:            s.lastID,
		HasPrediction: s.store.Updates() > 0,
		Current:       current,
		Previous:      previous,
		NetUseful:     metrics.NetUseful(current.Qout, current.Qloss),
		Trends:        metrics.ComputeTrends(previous, current).All(),
		HeatOutput: Series{
			Name:   SeriesHeatOutput,
			Labels: StepLabels(metrics.HeatOutputSteps, s.cfg.LabelStep),
			Values: s.synth.HeatOutputCurve(current.Qout),
		},
		HeatLoss: Series{
			Name:   SeriesHeatLoss,
			Labels: StepLabels(metrics.LossSteps, s.cfg.LabelStep),
			Values: loss,
		},
		NetUsefulHeat: Series{
			Name:   SeriesNetUseful,
			Labels: StepLabels(metrics.LossSteps, s.cfg.LabelStep),
			Values: net,
		},
	}
	if !s.updatedAt.IsZero() {
		dash.UpdatedAt = s.updatedAt.Format(time.RFC3339)
	}
	return dash
}

// StepLabels returns "0s", "10s", ... for n synthetic steps. Fractional
// steps keep their fraction, e.g. "1.5s".
func StepLabels(n int, step time.Duration) []string {
	labels := make([]string, n)
	for i := range labels {
		offset := step * time.Duration(i)
		labels[i] = strconv.FormatFloat(offset.Seconds(), 'f', -1, 64) + "s"
	}
	return labels
}

func reportKey(ts time.Time, id string) string {
	return fmt.Sprintf("dashboards/%s/%s.json", ts.UTC().Format("2006/01/02"), id)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
