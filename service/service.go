// Package service implements the service facade: the orchestration layer
// wiring together repo (the polygon registry), vertex histories,
// statemgr's update policy, query, precompute, and cache into the single
// surface a caller uses.
//
// Read path for GetPolygonAt: precomputation lookup, then the LRU cache,
// then a locked reconstruction that backfills the cache. Write paths take
// a read lock on the registry (concurrent writes to different polygons
// never serialize against each other — each polygon's histories carry
// their own per-vertex lock) and, after mutating, invalidate this
// polygon's cache entries and drop its precomputed entries while
// retaining its marks.
package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/deltapolygon/deltapolygon/cache"
	"github.com/deltapolygon/deltapolygon/config"
	"github.com/deltapolygon/deltapolygon/geo"
	"github.com/deltapolygon/deltapolygon/geojson"
	"github.com/deltapolygon/deltapolygon/persist"
	"github.com/deltapolygon/deltapolygon/point"
	"github.com/deltapolygon/deltapolygon/polygon"
	"github.com/deltapolygon/deltapolygon/precompute"
	"github.com/deltapolygon/deltapolygon/query"
	"github.com/deltapolygon/deltapolygon/repo"
	"github.com/deltapolygon/deltapolygon/statemgr"
	"github.com/deltapolygon/deltapolygon/telemetry"
	"github.com/deltapolygon/deltapolygon/tfunc"
	"github.com/deltapolygon/deltapolygon/vertex"
	"github.com/deltapolygon/deltapolygon/vstate"
)

// ErrInvalidArgument is returned for a malformed or unresolvable argument.
var ErrInvalidArgument = errors.New("service: invalid argument")

// ChangeKind tags what happened in a PolygonChanged notification.
type ChangeKind int

const (
	Created ChangeKind = iota
	Updated
	VertexChangedKind
	Deleted
)

// PolygonChangedEvent is delivered after a polygon is created, updated,
// vertex-mutated, or deleted.
type PolygonChangedEvent struct {
	PolygonID uuid.UUID
	Kind      ChangeKind
	Polygon   *polygon.TemporalPolygon
}

// VertexChangedEvent is delivered, in addition to PolygonChangedEvent,
// whenever a single vertex's history is mutated.
type VertexChangedEvent struct {
	PolygonID   uuid.UUID
	VertexID    int
	ChangeTime  time.Time
	NewPosition point.Point
}

// Observer receives synchronous notifications on the writer's goroutine,
// after state is committed and caches invalidated.
type Observer interface {
	PolygonChanged(PolygonChangedEvent)
	VertexChanged(VertexChangedEvent)
}

// Service is the facade wiring the registry, caches, and update policy
// together.
type Service struct {
	repo       *repo.Repo
	cache      *cache.Cache
	precompute *precompute.Table
	cfg        config.Config
	metrics    *telemetry.Metrics
	log        *telemetry.Logger

	observers []Observer
}

// New builds a Service from cfg. metrics/log may be nil: a nil log is
// replaced by a no-op logger, and a nil metrics disables instrumentation.
func New(cfg config.Config, metrics *telemetry.Metrics, log *telemetry.Logger) *Service {
	if log == nil {
		log = telemetry.NewNop()
	}
	return &Service{
		repo:       repo.New(),
		cache:      cache.New(cfg.LRUCapacity),
		precompute: precompute.New(),
		cfg:        cfg,
		metrics:    metrics,
		log:        log,
	}
}

// Subscribe registers o to receive future change notifications.
func (s *Service) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Service) notifyPolygon(e PolygonChangedEvent) {
	for _, o := range s.observers {
		o.PolygonChanged(e)
	}
}

func (s *Service) notifyVertex(e VertexChangedEvent) {
	for _, o := range s.observers {
		o.VertexChanged(e)
	}
}

// CreatePolygon validates the initial reconstruction and registers a new
// TemporalPolygon.
func (s *Service) CreatePolygon(vertexIDs []int, initial map[int]point.Point, t0 time.Time, cs polygon.CoordSystem) (*polygon.TemporalPolygon, error) {
	if len(vertexIDs) == 0 {
		return nil, ErrInvalidArgument
	}
	pts := make([]point.Point, len(vertexIDs))
	vertices := make(map[int]*vertex.Vertex, len(vertexIDs))
	for i, id := range vertexIDs {
		p, ok := initial[id]
		if !ok {
			return nil, ErrInvalidArgument
		}
		pts[i] = p
		vertices[id] = vertex.NewWithInitialState(id, vstate.NewAbsolute(p, point.Open(t0)))
	}
	if err := geo.Validate(pts); err != nil {
		return nil, err
	}

	poly, err := polygon.New(vertexIDs, vertices, cs)
	if err != nil {
		return nil, err
	}
	s.repo.Put(poly)
	if s.metrics != nil {
		s.metrics.PolygonsCreated.Inc()
	}
	s.notifyPolygon(PolygonChangedEvent{PolygonID: poly.ID, Kind: Created, Polygon: poly})
	return poly, nil
}

// UpdateVertex applies statemgr's update policy to one vertex of pid, then
// invalidates pid's caches and notifies observers.
func (s *Service) UpdateVertex(pid uuid.UUID, vertexID int, newPoint point.Point, tChange time.Time, useDelta bool) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	v, ok := poly.Vertices[vertexID]
	if !ok {
		return ErrInvalidArgument
	}

	statemgr.UpdateVertex(v, newPoint, tChange, useDelta, s.cfg.DeltaThreshold)
	s.afterVertexMutation(poly)
	if s.metrics != nil {
		s.metrics.VertexUpdates.Inc()
	}
	s.notifyPolygon(PolygonChangedEvent{PolygonID: pid, Kind: VertexChangedKind, Polygon: poly})
	s.notifyVertex(VertexChangedEvent{PolygonID: pid, VertexID: vertexID, ChangeTime: tChange, NewPosition: newPoint})
	return nil
}

// UpdateVerticesWithSameDelta applies one shared delta across vertexIDs of
// pid, then invalidates caches and notifies observers.
func (s *Service) UpdateVerticesWithSameDelta(pid uuid.UUID, vertexIDs []int, dx, dy float64, tChange time.Time) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	for _, id := range vertexIDs {
		if _, ok := poly.Vertices[id]; !ok {
			return ErrInvalidArgument
		}
	}

	statemgr.UpdateVerticesWithSameDelta(poly.Vertices, vertexIDs, dx, dy, tChange)
	s.afterVertexMutation(poly)
	if s.metrics != nil {
		s.metrics.VertexUpdates.Add(float64(len(vertexIDs)))
	}
	s.notifyPolygon(PolygonChangedEvent{PolygonID: pid, Kind: VertexChangedKind, Polygon: poly})
	for _, id := range vertexIDs {
		p, _ := poly.Vertices[id].PositionAt(tChange)
		s.notifyVertex(VertexChangedEvent{PolygonID: pid, VertexID: id, ChangeTime: tChange, NewPosition: p})
	}
	return nil
}

// afterVertexMutation implements the write-path cache bookkeeping shared by
// every mutating operation: invalidate this polygon's LRU entries and drop
// (but do not unmark) its precomputed entries.
func (s *Service) afterVertexMutation(poly *polygon.TemporalPolygon) {
	s.cache.InvalidatePolygon(poly.ID)
	s.precompute.Invalidate(poly.ID)
}

// GetPolygon returns the polygon with the given id.
func (s *Service) GetPolygon(pid uuid.UUID) (*polygon.TemporalPolygon, error) {
	return s.repo.Get(pid)
}

// GetPolygonAt implements the read path: precomputation lookup, then LRU
// lookup, then a locked reconstruction that backfills the LRU.
func (s *Service) GetPolygonAt(pid uuid.UUID, t time.Time) ([]point.Point, error) {
	if pts, ok := s.precompute.TryGet(pid, t); ok {
		s.observeReconstructSource("precompute")
		return pts, nil
	}
	if pts, ok := s.cache.Get(pid, t); ok {
		s.observeReconstructSource("cache")
		return pts, nil
	}

	poly, err := s.repo.Get(pid)
	if err != nil {
		return nil, err
	}
	pts, err := poly.ReconstructAt(t)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ReconstructErrors.Inc()
		}
		return nil, err
	}
	s.cache.Put(pid, t, pts)
	s.observeReconstructSource("reconstruct")
	return pts, nil
}

func (s *Service) observeReconstructSource(source string) {
	if s.metrics != nil {
		s.metrics.ReconstructHits.WithLabelValues(source).Inc()
	}
}

// GetVertexPosition resolves a single vertex's position at t.
func (s *Service) GetVertexPosition(pid uuid.UUID, vertexID int, t time.Time) (point.Point, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return point.Point{}, err
	}
	v, ok := poly.Vertices[vertexID]
	if !ok {
		return point.Point{}, ErrInvalidArgument
	}
	return v.PositionAt(t)
}

// RemovePolygon deletes pid from the registry and drops its caches.
func (s *Service) RemovePolygon(pid uuid.UUID) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	s.repo.Remove(pid)
	s.cache.InvalidatePolygon(pid)
	s.precompute.Clear(pid)
	if s.metrics != nil {
		s.metrics.PolygonsRemoved.Inc()
	}
	s.notifyPolygon(PolygonChangedEvent{PolygonID: pid, Kind: Deleted, Polygon: poly})
	return nil
}

// GetAllPolygons returns a snapshot of every registered polygon.
func (s *Service) GetAllPolygons() []*polygon.TemporalPolygon {
	return s.repo.All()
}

// PolygonsInTimeRange returns every polygon with at least one vertex state
// intersecting [t1, t2] for every vertex (query.ExistsInRange).
func (s *Service) PolygonsInTimeRange(t1, t2 time.Time) []*polygon.TemporalPolygon {
	var out []*polygon.TemporalPolygon
	for _, p := range s.repo.All() {
		if query.ExistsInRange(p, t1, t2) {
			out = append(out, p)
		}
	}
	return out
}

// PolygonsForEntireTimeRange returns every polygon satisfying the
// documented endpoint-only simplification (query.ExistsForEntireRange).
func (s *Service) PolygonsForEntireTimeRange(t1, t2 time.Time) []*polygon.TemporalPolygon {
	var out []*polygon.TemporalPolygon
	for _, p := range s.repo.All() {
		if query.ExistsForEntireRange(p, t1, t2) {
			out = append(out, p)
		}
	}
	return out
}

// PolygonHistory samples pid's reconstruction over [t1, t2] (query.History).
// A zero step defaults to cfg.HistorySampleStep rather than falling
// through to query.History's own change-times sampling.
func (s *Service) PolygonHistory(pid uuid.UUID, t1, t2 time.Time, step time.Duration) ([]query.Sample, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return nil, err
	}
	if step == 0 {
		step = s.cfg.HistorySampleStep
	}
	return query.History(poly, t1, t2, step), nil
}

// MarkTimeForPrecomputation flags t under pid for future materialization.
func (s *Service) MarkTimeForPrecomputation(pid uuid.UUID, t time.Time) {
	s.precompute.Mark(pid, t)
}

// MarkTimesForPrecomputation is the plural convenience form.
func (s *Service) MarkTimesForPrecomputation(pid uuid.UUID, times []time.Time) {
	for _, t := range times {
		s.precompute.Mark(pid, t)
	}
}

// UnmarkTimeForPrecomputation removes t from pid's marks.
func (s *Service) UnmarkTimeForPrecomputation(pid uuid.UUID, t time.Time) {
	s.precompute.Unmark(pid, t)
}

// PrecomputeMarkedTimes materializes currently marked times for pid, at
// most cfg.PrecomputeBatchSize per call. Callers needing the rest must
// call again; this bounds how much reconstruction work one call performs.
func (s *Service) PrecomputeMarkedTimes(pid uuid.UUID) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	s.precompute.PrecomputeMarkedBatch(pid, poly.ReconstructAt, s.cfg.PrecomputeBatchSize)
	return nil
}

// PrecomputePolygonAt materializes a single (pid, t) reconstruction
// immediately, independent of whether t is marked.
func (s *Service) PrecomputePolygonAt(pid uuid.UUID, t time.Time) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	pts, err := poly.ReconstructAt(t)
	if err != nil {
		return err
	}
	s.precompute.Precompute(pid, t, pts)
	return nil
}

// GetPrecomputationTimes returns the times currently marked for pid.
func (s *Service) GetPrecomputationTimes(pid uuid.UUID) []time.Time {
	return s.precompute.MarkedTimes(pid)
}

// ClearPrecomputations drops both marks and materialized entries for pid.
func (s *Service) ClearPrecomputations(pid uuid.UUID) {
	s.precompute.Clear(pid)
}

// DetectIdenticalChanges reports groups of vertices in pid whose state at
// t is equivalent.
func (s *Service) DetectIdenticalChanges(pid uuid.UUID, t time.Time) ([]statemgr.IdenticalChangeGroup, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return nil, err
	}
	return statemgr.DetectIdenticalChanges(poly.Vertices, poly.VertexIDs, t), nil
}

// VertexIssue is one integrity problem found by ValidatePolygon, naming
// which vertex it belongs to.
type VertexIssue struct {
	VertexID int
	vertex.Issue
}

// ValidatePolygon runs vertex.Validate across every vertex of pid and
// returns every gap/overlap found, tagged with the owning vertex id. It
// never mutates the polygon.
func (s *Service) ValidatePolygon(pid uuid.UUID) ([]VertexIssue, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return nil, err
	}
	var out []VertexIssue
	for _, id := range poly.VertexIDs {
		for _, issue := range poly.Vertices[id].Validate() {
			out = append(out, VertexIssue{VertexID: id, Issue: issue})
		}
	}
	return out, nil
}

// RepairPolygon runs vertex.Repair across every vertex of pid, re-closing
// overlapping or dangling open-ended states, then invalidates pid's
// caches since the reconstructed history may have changed.
func (s *Service) RepairPolygon(pid uuid.UUID) error {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return err
	}
	for _, id := range poly.VertexIDs {
		poly.Vertices[id].Repair()
	}
	s.afterVertexMutation(poly)
	return nil
}

// DetectVertexLinearPattern tests whether vertexID's motion across
// [tStart, tEnd] fits a constant-velocity line within cfg.LinearPatternTolerance,
// returning the fitted Linear function if so.
func (s *Service) DetectVertexLinearPattern(pid uuid.UUID, vertexID int, tStart, tEnd time.Time) (tfunc.Function, bool, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return tfunc.Function{}, false, err
	}
	v, ok := poly.Vertices[vertexID]
	if !ok {
		return tfunc.Function{}, false, ErrInvalidArgument
	}
	fn, ok := statemgr.DetectLinearPattern(v, tStart, tEnd, s.cfg.LinearPatternTolerance)
	return fn, ok, nil
}

// ToGeoJSON reconstructs pid at t and emits it as a GeoJSON Feature.
func (s *Service) ToGeoJSON(pid uuid.UUID, t time.Time) (geojson.Feature, error) {
	pts, err := s.GetPolygonAt(pid, t)
	if err != nil {
		return geojson.Feature{}, err
	}
	return geojson.NewFeature(pid, t.Format(time.RFC3339Nano), pts)
}

// Export serializes pid to the JSON persistence format.
func (s *Service) Export(pid uuid.UUID) ([]byte, error) {
	poly, err := s.repo.Get(pid)
	if err != nil {
		return nil, err
	}
	return persist.Marshal(poly)
}

// Import deserializes data and registers the resulting polygon.
func (s *Service) Import(data []byte) (*polygon.TemporalPolygon, error) {
	poly, err := persist.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	s.repo.Put(poly)
	return poly, nil
}
