package olap

import (
	"context"
	"strings"
	"sync"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/pkg/errors"
	"go.uber.org/zap"
)

type node struct {
	id       domain.NodeID
	parent   domain.NodeID // 0 для корневых узлов
	level    domain.LocationLevel
	label    string
	total    int64
	query    domain.QuerySpec
	children []domain.NodeID
	expanded bool
	loading  bool
}

// DrillTree - дерево агрегатов по уровням location, раскрываемое по требованию.
// Узлы хранятся в арене по NodeID; id не переиспользуются между поколениями,
// поэтому id из отброшенного дерева никогда не указывает на новый узел.
type DrillTree struct {
	repo repository.DimensionRepository
	log  *zap.Logger

	collapseSiblings bool

	mu         sync.Mutex
	generation uint64
	nextID     domain.NodeID
	filters    domain.Filters
	nodes      map[domain.NodeID]*node
	roots      []domain.NodeID
}

// TreeOption configures a DrillTree.
type TreeOption func(*DrillTree)

// WithSiblingCollapse closes the other children of the same parent when a
// node is opened (accordion behaviour).
func WithSiblingCollapse(enabled bool) TreeOption {
	return func(t *DrillTree) { t.collapseSiblings = enabled }
}

func NewDrillTree(repo repository.DimensionRepository, log *zap.Logger, opts ...TreeOption) *DrillTree {
	t := &DrillTree{
		repo:             repo,
		log:              log,
		collapseSiblings: true,
		nodes:            make(map[domain.NodeID]*node),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LoadRoot discards the whole tree and loads the island level under filters.
// A transport failure leaves an empty tree and is only logged; the returned
// error is reserved for invalid filters. Nodes expanded before the call are
// not re-expanded.
func (t *DrillTree) LoadRoot(ctx context.Context, filters domain.Filters) error {
	q, err := BuildQuery(domain.DimensionLocation, nil, filters, "")
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.filters = filters
	t.nodes = make(map[domain.NodeID]*node)
	t.roots = nil
	t.mu.Unlock()

	pairs, err := t.repo.QueryPairs(ctx, q)
	if err != nil {
		t.log.Error("failed to load drill root",
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		t.log.Debug("discarding stale root load",
			zap.Uint64("generation", gen),
			zap.Uint64("current", t.generation),
		)
		return nil
	}
	t.roots = t.addChildren(0, domain.LevelIsland, nil, pairs)
	return nil
}

// Rebuild is LoadRoot under new filters.
func (t *DrillTree) Rebuild(ctx context.Context, filters domain.Filters) error {
	return t.LoadRoot(ctx, filters)
}

// Expand toggles a node. An expanded node collapses; a collapsed node with
// children re-opens without a fetch; a node without children fetches the next
// level scoped to its query. A fetch completing after a rebuild is dropped
// and reported as ErrTreeRebuilt.
func (t *DrillTree) Expand(ctx context.Context, id domain.NodeID) (domain.DrillNode, error) {
	t.mu.Lock()
	n, ok := t.nodes[id]
	if !ok {
		t.mu.Unlock()
		return domain.DrillNode{}, errors.ErrNodeNotFound
	}
	if n.expanded {
		n.expanded = false
		view := t.view(n)
		t.mu.Unlock()
		return view, nil
	}
	if len(n.children) > 0 {
		t.open(n)
		view := t.view(n)
		t.mu.Unlock()
		return view, nil
	}
	next, ok := n.level.Next()
	if !ok {
		t.mu.Unlock()
		return domain.DrillNode{}, errors.ErrInvalidHierarchyRequest.WithMessage("%s is the finest level", n.level.Key())
	}
	if n.loading {
		view := t.view(n)
		t.mu.Unlock()
		return view, nil
	}
	n.loading = true
	gen, q := t.generation, n.query
	t.mu.Unlock()

	pairs, err := t.repo.QueryPairs(ctx, q)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		t.log.Debug("discarding stale expand",
			zap.Uint64("node", uint64(id)),
			zap.Uint64("generation", gen),
			zap.Uint64("current", t.generation),
		)
		return domain.DrillNode{}, errors.ErrTreeRebuilt.WithMessage("tree was rebuilt while node %d was loading", id)
	}
	n.loading = false
	if err != nil {
		t.log.Error("failed to expand drill node",
			zap.Uint64("node", uint64(id)),
			zap.String("label", n.label),
			zap.String("level", next.Key()),
			zap.Error(err),
		)
		return t.view(n), nil
	}
	n.children = t.addChildren(n.id, next, n.query.LocationPath(), pairs)
	t.open(n)
	return t.view(n), nil
}

// Collapse closes a node without touching its children.
func (t *DrillTree) Collapse(id domain.NodeID) (domain.DrillNode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return domain.DrillNode{}, errors.ErrNodeNotFound
	}
	n.expanded = false
	return t.view(n), nil
}

// ExpandPath opens the nodes named by labels, coarsest first, matching labels
// case-insensitively. It returns the last node reached.
func (t *DrillTree) ExpandPath(ctx context.Context, labels ...string) (domain.DrillNode, error) {
	var current domain.DrillNode
	candidates := t.Snapshot()
	for depth, label := range labels {
		found := false
		for _, c := range candidates {
			if strings.EqualFold(strings.TrimSpace(c.Label), strings.TrimSpace(label)) {
				current, found = c, true
				break
			}
		}
		if !found {
			return domain.DrillNode{}, errors.ErrNodeNotFound.WithMessage("no node %q at level %s", label, domain.LocationLevel(depth).Key())
		}
		if !current.Expanded && current.Level != domain.LevelVillage {
			node, err := t.Expand(ctx, current.ID)
			if err != nil {
				return domain.DrillNode{}, err
			}
			current = node
		}
		candidates = current.Children
	}
	return current, nil
}

// Snapshot returns copies of the root nodes with their subtrees.
func (t *DrillTree) Snapshot() []domain.DrillNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.views(t.roots)
}

// Node returns a copy of one node with its subtree.
func (t *DrillTree) Node(id domain.NodeID) (domain.DrillNode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return domain.DrillNode{}, false
	}
	return t.view(n), true
}

// Parent returns the id of the node's parent; ok is false for roots and
// unknown ids.
func (t *DrillTree) Parent(id domain.NodeID) (domain.NodeID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok || n.parent == 0 {
		return 0, false
	}
	return n.parent, true
}

// ChildPairs returns the (label, total) pairs of an expanded node's children,
// in fetch order. ok is false when the node has no loaded children.
func (t *DrillTree) ChildPairs(id domain.NodeID) ([]domain.CountPair, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []domain.NodeID
	if id == 0 {
		ids = t.roots
	} else if n, ok := t.nodes[id]; ok {
		ids = n.children
	}
	if len(ids) == 0 {
		return nil, false
	}
	pairs := make([]domain.CountPair, 0, len(ids))
	for _, cid := range ids {
		c := t.nodes[cid]
		pairs = append(pairs, domain.CountPair{Label: c.label, Count: c.total})
	}
	return pairs, true
}

// Generation is incremented by every LoadRoot.
func (t *DrillTree) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// Filters returns the filters the current tree was built with.
func (t *DrillTree) Filters() domain.Filters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters
}

// addChildren creates nodes for pairs in response order. Caller holds mu.
func (t *DrillTree) addChildren(parent domain.NodeID, level domain.LocationLevel, path []string, pairs []domain.CountPair) []domain.NodeID {
	ids := make([]domain.NodeID, 0, len(pairs))
	for _, p := range pairs {
		label := strings.TrimSpace(p.Label)
		if label == "" {
			continue
		}
		childPath := append(append([]string{}, path...), label)
		q, err := BuildQuery(domain.DimensionLocation, childPath, t.filters, "")
		if err != nil {
			t.log.Warn("skipping drill child", zap.String("label", label), zap.Error(err))
			continue
		}
		t.nextID++
		t.nodes[t.nextID] = &node{
			id:     t.nextID,
			parent: parent,
			level:  level,
			label:  label,
			total:  p.Count,
			query:  q,
		}
		ids = append(ids, t.nextID)
	}
	return ids
}

// open marks n expanded and, in accordion mode, collapses its siblings.
func (t *DrillTree) open(n *node) {
	n.expanded = true
	if !t.collapseSiblings {
		return
	}
	siblings := t.roots
	if p, ok := t.nodes[n.parent]; ok {
		siblings = p.children
	}
	for _, sid := range siblings {
		if sid != n.id {
			t.nodes[sid].expanded = false
		}
	}
}

func (t *DrillTree) view(n *node) domain.DrillNode {
	return domain.DrillNode{
		ID:       n.id,
		Level:    n.level,
		Label:    n.label,
		Total:    n.total,
		Query:    n.query,
		Children: t.views(n.children),
		Expanded: n.expanded,
		Loading:  n.loading,
	}
}

func (t *DrillTree) views(ids []domain.NodeID) []domain.DrillNode {
	out := make([]domain.DrillNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.view(t.nodes[id]))
	}
	return out
}
