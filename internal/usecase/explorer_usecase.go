package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/olap"
	"github.com/hotspot-olap/internal/pkg/errors"
	"github.com/hotspot-olap/internal/usecase/dto"
)

// ExplorerOptions - настройки сессий обозревателя
type ExplorerOptions struct {
	SessionTTL       time.Duration
	CollapseSiblings bool
	ShowEmpty        bool
}

// session - состояние одного обозревателя: дерево, фокус, фильтры и фильтр времени.
// mu сериализует переходы состояния; загрузки узлов дерево синхронизирует само.
type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	tree     *olap.DrillTree
	filters  domain.Filters
	focus    domain.NodeID
	time     *olap.TimeFilter
	lastSeen time.Time
}

// ExplorerUseCase - use case для drill-down, карты и каскадного фильтра времени
type ExplorerUseCase struct {
	dimensions repository.DimensionRepository
	hotspots   repository.HotspotRepository
	boundaries repository.BoundaryRepository
	aggregator *olap.Aggregator
	mapSync    *olap.MapSync
	logger     *zap.Logger
	opts       ExplorerOptions

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	now      func() time.Time
}

// NewExplorerUseCase - создание нового ExplorerUseCase
func NewExplorerUseCase(
	dimensions repository.DimensionRepository,
	hotspots repository.HotspotRepository,
	boundaries repository.BoundaryRepository,
	norm *olap.Normalizer,
	logger *zap.Logger,
	opts ExplorerOptions,
) *ExplorerUseCase {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	return &ExplorerUseCase{
		dimensions: dimensions,
		hotspots:   hotspots,
		boundaries: boundaries,
		aggregator: olap.NewAggregator(norm),
		mapSync:    olap.NewMapSync(norm, opts.ShowEmpty),
		logger:     logger,
		opts:       opts,
		sessions:   make(map[uuid.UUID]*session),
		now:        time.Now,
	}
}

// SetClock overrides the session clock (tests).
func (uc *ExplorerUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// CreateSession loads the island level under filters and optionally opens
// the nodes named by path.
func (uc *ExplorerUseCase) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	filters := req.Filters.ToFilters()
	if err := filters.Time.Validate(); err != nil {
		return nil, errors.ErrValidation.WithMessage("%v", err)
	}

	s := &session{
		id:       uuid.New(),
		tree:     olap.NewDrillTree(uc.dimensions, uc.logger, olap.WithSiblingCollapse(uc.opts.CollapseSiblings)),
		filters:  filters,
		time:     olap.NewTimeFilter(nil, filters.Time),
		lastSeen: uc.now(),
	}
	if err := s.tree.LoadRoot(ctx, filters); err != nil {
		return nil, err
	}
	if len(req.Path) > 0 {
		node, err := s.tree.ExpandPath(ctx, req.Path...)
		if err != nil {
			return nil, err
		}
		s.focus = node.ID
	}

	uc.mu.Lock()
	uc.sessions[s.id] = s
	uc.mu.Unlock()

	uc.logger.Info("Explorer session created",
		zap.String("session_id", s.id.String()),
		zap.Int("roots", len(s.tree.Snapshot())))

	s.mu.Lock()
	defer s.mu.Unlock()
	return uc.sessionResponse(s), nil
}

// GetSession returns the session's tree, filters and time filter.
func (uc *ExplorerUseCase) GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return uc.sessionResponse(s), nil
}

// DeleteSession drops the session.
func (uc *ExplorerUseCase) DeleteSession(ctx context.Context, id uuid.UUID) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.sessions[id]; !ok {
		return errors.ErrSessionNotFound
	}
	delete(uc.sessions, id)
	return nil
}

// ApplyFilters stores filters, clears the focus and rebuilds the tree in one
// step. Expands still in flight for the old tree are discarded.
func (uc *ExplorerUseCase) ApplyFilters(ctx context.Context, id uuid.UUID, req dto.FiltersRequest) (*dto.SessionResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}
	filters := req.ToFilters()
	if err := filters.Time.Validate(); err != nil {
		return nil, errors.ErrValidation.WithMessage("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := uc.applyFilters(ctx, s, filters); err != nil {
		return nil, err
	}
	return uc.sessionResponse(s), nil
}

// applyFilters is the single filter transition. Caller holds s.mu.
func (uc *ExplorerUseCase) applyFilters(ctx context.Context, s *session, filters domain.Filters) error {
	if err := s.tree.Rebuild(ctx, filters); err != nil {
		return err
	}
	s.filters = filters
	s.focus = 0
	s.time = olap.NewTimeFilter(nil, filters.Time)

	uc.logger.Debug("Explorer filters applied",
		zap.String("session_id", s.id.String()),
		zap.Uint64("generation", s.tree.Generation()))
	return nil
}

// Toggle expands or collapses a node. Opening moves the focus to the node;
// collapsing the focused node or one of its ancestors rolls the focus up to
// the collapsed node's parent. An expand overtaken by a rebuild returns the
// current tree instead of the node.
func (uc *ExplorerUseCase) Toggle(ctx context.Context, id uuid.UUID, nodeID domain.NodeID) (*dto.ToggleResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	before, ok := s.tree.Node(nodeID)
	if !ok {
		return nil, errors.ErrNodeNotFound
	}
	gen := s.tree.Generation()

	node, err := s.tree.Expand(ctx, nodeID)
	if errors.Is(err, errors.ErrTreeRebuilt) {
		uc.logger.Debug("Explorer toggle overtaken by rebuild",
			zap.String("session_id", s.id.String()),
			zap.Uint64("node", uint64(nodeID)))
		s.mu.Lock()
		defer s.mu.Unlock()
		return &dto.ToggleResponse{
			Focus:      s.focus,
			Generation: s.tree.Generation(),
			Stale:      true,
			Tree:       s.tree.Snapshot(),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.Generation() == gen {
		switch {
		case node.Expanded:
			s.focus = node.ID
		case before.Expanded && uc.focusWithin(s, nodeID):
			s.focus, _ = s.tree.Parent(nodeID)
		}
		if s.focus != 0 {
			if _, ok := s.tree.Node(s.focus); !ok {
				s.focus = 0
			}
		}
	}

	return &dto.ToggleResponse{
		Node:       node,
		Focus:      s.focus,
		Generation: s.tree.Generation(),
	}, nil
}

// focusWithin reports whether the focus is nodeID or one of its descendants.
func (uc *ExplorerUseCase) focusWithin(s *session, nodeID domain.NodeID) bool {
	for cur := s.focus; cur != 0; {
		if cur == nodeID {
			return true
		}
		parent, ok := s.tree.Parent(cur)
		if !ok {
			return false
		}
		cur = parent
	}
	return false
}

// MapView builds the choropleth for the focused level. Counts come from the
// focused node's children when they are loaded, from the hotspot feed
// otherwise.
func (uc *ExplorerUseCase) MapView(ctx context.Context, id uuid.UUID) (*dto.MapResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	focus, filters := s.focus, s.filters
	s.mu.Unlock()

	var path []string
	if focus != 0 {
		if n, ok := s.tree.Node(focus); ok {
			path = n.Query.LocationPath()
		}
	}
	level := domain.LocationLevel(len(path))
	if !level.Valid() {
		level = domain.LevelVillage
	}

	resp := &dto.MapResponse{}
	var agg domain.AggregateMap
	source := "pairs"
	if pairs, ok := s.tree.ChildPairs(focus); ok {
		agg = uc.aggregator.FromPairs(pairs)
	} else {
		source = "feed"
		features, counts := uc.loadFeed(ctx, path, filters)
		agg = uc.aggregator.FromFeed(features, level, path, filters)
		resp.DateCounts = counts
		resp.LatestDate = olap.LatestDate(counts)
	}

	polygons, err := uc.boundaries.Features(ctx, level)
	if err != nil {
		uc.logger.Error("Failed to load boundaries",
			zap.String("level", level.String()),
			zap.Error(err))
		polygons = nil
	}

	resp.View = uc.mapSync.View(level, path, polygons, agg)
	resp.View.Source = source
	return resp, nil
}

func (uc *ExplorerUseCase) loadFeed(ctx context.Context, path []string, filters domain.Filters) ([]domain.HotspotFeature, map[string]int64) {
	// the village level has no finer level to group by, the feed is scoped to its parent
	scope := path
	if len(scope) >= domain.LocationLevelCount {
		scope = scope[:domain.LocationLevelCount-1]
	}
	q, err := olap.BuildQuery(domain.DimensionLocation, scope, filters, "")
	if err != nil {
		uc.logger.Error("Invalid feed query", zap.Strings("path", path), zap.Error(err))
		return nil, nil
	}
	features, err := uc.hotspots.GetHotspots(ctx, q)
	if err != nil {
		uc.logger.Error("Failed to load hotspot feed", zap.Error(err))
		return nil, nil
	}
	return features, uc.aggregator.DateCounts(features, filters)
}

// GetTime returns the time filter state.
func (uc *ExplorerUseCase) GetTime(ctx context.Context, id uuid.UUID) (*dto.TimeFilterResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := timeResponse(s.time)
	return &resp, nil
}

// OpenTime opens a slot's dropdown, scoped to a tree node (0 = everything),
// and loads its options when needed.
func (uc *ExplorerUseCase) OpenTime(ctx context.Context, id uuid.UUID, req dto.OpenTimeRequest) (*dto.TimeFilterResponse, error) {
	level, ok := domain.ParseTimeLevel(req.Level)
	if !ok {
		return nil, errors.ErrValidation.WithMessage("unknown time level %q", req.Level)
	}
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	var scope []string
	if req.Node != 0 {
		n, ok := s.tree.Node(domain.NodeID(req.Node))
		if !ok {
			return nil, errors.ErrNodeNotFound
		}
		scope = n.Query.LocationPath()
	}

	s.mu.Lock()
	if !samePath(s.time.Scope(), scope) {
		s.time = olap.NewTimeFilter(scope, s.time.State())
	}
	tf := s.time
	fetch, err := tf.Open(level)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return uc.resolveTime(ctx, s, tf, fetch), nil
}

// SetTime stores a slot value, resetting finer slots, and loads the next
// slot's options.
func (uc *ExplorerUseCase) SetTime(ctx context.Context, id uuid.UUID, levelKey string, req dto.SetTimeRequest) (*dto.TimeFilterResponse, error) {
	level, ok := domain.ParseTimeLevel(levelKey)
	if !ok {
		return nil, errors.ErrValidation.WithMessage("unknown time level %q", levelKey)
	}
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	tf := s.time
	fetch, err := tf.SetSlot(level, req.Value)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return uc.resolveTime(ctx, s, tf, fetch), nil
}

// SubmitTime applies the selected time state as the session's time filter.
func (uc *ExplorerUseCase) SubmitTime(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.time.Submit()
	if err != nil {
		return nil, err
	}
	filters := s.filters
	filters.Time = state
	if err := uc.applyFilters(ctx, s, filters); err != nil {
		return nil, err
	}
	return uc.sessionResponse(s), nil
}

// resolveTime runs fetch (if any) without holding the session lock and
// applies the result to tf. Results for a replaced filter are dropped.
func (uc *ExplorerUseCase) resolveTime(ctx context.Context, s *session, tf *olap.TimeFilter, fetch *olap.FetchRequest) *dto.TimeFilterResponse {
	if fetch != nil {
		options, err := uc.dimensions.QueryTimeOptions(ctx, fetch.Query)
		if err != nil {
			uc.logger.Warn("Failed to load time options",
				zap.String("level", fetch.Level.Key()),
				zap.Error(err))
		}

		s.mu.Lock()
		if s.time == tf && !tf.Resolve(fetch, options, err) {
			uc.logger.Debug("Discarding stale time options", zap.String("level", fetch.Level.Key()))
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	resp := timeResponse(s.time)
	return &resp
}

// DimensionOptions returns the (label, count) pairs of a categorical
// dimension under filters. Transport failures yield an empty list.
func (uc *ExplorerUseCase) DimensionOptions(ctx context.Context, dimension string, req dto.FiltersRequest) (*dto.DimensionOptionsResponse, error) {
	dim, ok := domain.ParseDimension(dimension)
	if !ok || dim == domain.DimensionTime {
		return nil, errors.ErrInvalidDimension.WithMessage("no options for dimension %q", dimension)
	}

	q, err := olap.BuildQuery(dim, nil, req.ToFilters(), "")
	if err != nil {
		return nil, err
	}
	pairs, err := uc.dimensions.QueryPairs(ctx, q)
	if err != nil {
		uc.logger.Error("Failed to load dimension options",
			zap.String("dimension", string(dim)),
			zap.Error(err))
		pairs = []domain.CountPair{}
	}
	return &dto.DimensionOptionsResponse{Dimension: dim, Options: pairs}, nil
}

// EvictExpired drops sessions idle for longer than the TTL and returns how
// many were removed.
func (uc *ExplorerUseCase) EvictExpired() int {
	cutoff := uc.now().Add(-uc.opts.SessionTTL)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	evicted := 0
	for id, s := range uc.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(uc.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle sessions until ctx is done.
func (uc *ExplorerUseCase) RunJanitor(ctx context.Context) {
	interval := uc.opts.SessionTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := uc.EvictExpired(); n > 0 {
				uc.logger.Info("Evicted idle explorer sessions", zap.Int("count", n))
			}
		}
	}
}

// SessionCount returns the number of live sessions.
func (uc *ExplorerUseCase) SessionCount() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

func (uc *ExplorerUseCase) session(id uuid.UUID) (*session, error) {
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	uc.mu.Unlock()
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	// lock order is uc.mu before s.mu, so s.mu is released before eviction
	now := uc.now()
	s.mu.Lock()
	expired := now.Sub(s.lastSeen) > uc.opts.SessionTTL
	if !expired {
		s.lastSeen = now
	}
	s.mu.Unlock()

	if expired {
		uc.mu.Lock()
		delete(uc.sessions, id)
		uc.mu.Unlock()
		return nil, errors.ErrSessionNotFound
	}
	return s, nil
}

// sessionResponse snapshots the session. Caller holds s.mu.
func (uc *ExplorerUseCase) sessionResponse(s *session) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:         s.id,
		Generation: s.tree.Generation(),
		Filters:    s.filters,
		Focus:      s.focus,
		Tree:       s.tree.Snapshot(),
		Time:       timeResponse(s.time),
		ExpiresAt:  s.lastSeen.Add(uc.opts.SessionTTL),
	}
}

func timeResponse(tf *olap.TimeFilter) dto.TimeFilterResponse {
	scope := tf.Scope()
	if scope == nil {
		scope = []string{}
	}
	return dto.TimeFilterResponse{
		Scope: scope,
		Slots: tf.Slots(),
		State: tf.State(),
	}
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
