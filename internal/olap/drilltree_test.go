package olap_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/olap"
	"github.com/hotspot-olap/internal/pkg/errors"
)

func loadedTree(t *testing.T, repo *MockDimensionRepository, opts ...olap.TreeOption) *olap.DrillTree {
	t.Helper()
	repo.On("QueryPairs", mock.Anything, pathIs()).Return(pairs("JAWA", 45, "SUMATERA", 32), nil).Once()
	tree := olap.NewDrillTree(repo, zap.NewNop(), opts...)
	require.NoError(t, tree.LoadRoot(context.Background(), domain.Filters{}))
	return tree
}

func TestDrillTree_LoadRoot(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)

	roots := tree.Snapshot()
	require.Len(t, roots, 2)
	assert.Equal(t, "JAWA", roots[0].Label)
	assert.Equal(t, int64(45), roots[0].Total)
	assert.Equal(t, "SUMATERA", roots[1].Label)
	assert.Equal(t, int64(32), roots[1].Total)
	for _, r := range roots {
		assert.False(t, r.Expanded)
		assert.Empty(t, r.Children)
		assert.Equal(t, domain.LevelIsland, r.Level)
	}
	repo.AssertExpectations(t)
}

func TestDrillTree_LoadRootTransportFailure(t *testing.T) {
	repo := &MockDimensionRepository{}
	repo.On("QueryPairs", mock.Anything, mock.Anything).Return(nil, errors.ErrTransportFailure).Once()

	tree := olap.NewDrillTree(repo, zap.NewNop())
	require.NoError(t, tree.LoadRoot(context.Background(), domain.Filters{}))
	assert.Empty(t, tree.Snapshot())
	assert.Equal(t, uint64(1), tree.Generation())
}

func TestDrillTree_ExpandIssuesScopedQuery(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)
	jawa := tree.Snapshot()[0]

	var sent domain.QuerySpec
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.QuerySpec) }).
		Return(pairs("JAWA TENGAH", 20, "JAWA TIMUR", 25), nil).Once()

	node, err := tree.Expand(context.Background(), jawa.ID)
	require.NoError(t, err)

	v := sent.Values()
	assert.Equal(t, "JAWA", v.Get("pulau"))
	assert.Equal(t, "location", v.Get("dimension"))
	assert.Len(t, v, 2)

	assert.True(t, node.Expanded)
	require.Len(t, node.Children, 2)
	assert.Equal(t, "JAWA TENGAH", node.Children[0].Label)
	assert.Equal(t, domain.LevelProvince, node.Children[0].Level)
	assert.Equal(t, []string{"JAWA", "JAWA TENGAH"}, node.Children[0].Query.LocationPath())

	roots := tree.Snapshot()
	assert.Len(t, roots[0].Children, 2)
	assert.Empty(t, roots[1].Children, "only the expanded node gets children")
	repo.AssertExpectations(t)
}

func TestDrillTree_ToggleDoesNotRefetch(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)
	id := tree.Snapshot()[0].ID
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).Return(pairs("JAWA BARAT", 3), nil).Once()

	node, err := tree.Expand(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, node.Expanded)

	node, err = tree.Expand(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, node.Expanded)
	assert.Len(t, node.Children, 1, "collapse keeps children")

	node, err = tree.Expand(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, node.Expanded)

	repo.AssertNumberOfCalls(t, "QueryPairs", 2)
}

func TestDrillTree_SiblingCollapse(t *testing.T) {
	for _, accordion := range []bool{true, false} {
		t.Run(fmt.Sprintf("accordion=%v", accordion), func(t *testing.T) {
			repo := &MockDimensionRepository{}
			tree := loadedTree(t, repo, olap.WithSiblingCollapse(accordion))
			roots := tree.Snapshot()
			repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).Return(pairs("JAWA BARAT", 3), nil).Once()
			repo.On("QueryPairs", mock.Anything, pathIs("SUMATERA")).Return(pairs("RIAU", 8), nil).Once()

			_, err := tree.Expand(context.Background(), roots[0].ID)
			require.NoError(t, err)
			_, err = tree.Expand(context.Background(), roots[1].ID)
			require.NoError(t, err)

			roots = tree.Snapshot()
			assert.Equal(t, !accordion, roots[0].Expanded)
			assert.True(t, roots[1].Expanded)
		})
	}
}

func TestDrillTree_RebuildDropsChildren(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)
	oldID := tree.Snapshot()[0].ID
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).Return(pairs("JAWA BARAT", 3), nil).Once()
	_, err := tree.Expand(context.Background(), oldID)
	require.NoError(t, err)

	filters := domain.Filters{Confidence: "high"}
	repo.On("QueryPairs", mock.Anything, mock.MatchedBy(func(q domain.QuerySpec) bool {
		return q.Depth() == 0 && q.Confidence == "high"
	})).Return(pairs("JAWA", 10, "SUMATERA", 7), nil).Once()
	require.NoError(t, tree.Rebuild(context.Background(), filters))

	roots := tree.Snapshot()
	require.Len(t, roots, 2)
	assert.False(t, roots[0].Expanded)
	assert.Empty(t, roots[0].Children)
	assert.NotEqual(t, oldID, roots[0].ID)
	assert.Equal(t, "high", roots[0].Query.Confidence)

	_, err = tree.Expand(context.Background(), oldID)
	assert.True(t, errors.Is(err, errors.ErrNodeNotFound))

	repo.On("QueryPairs", mock.Anything, mock.MatchedBy(func(q domain.QuerySpec) bool {
		return q.Depth() == 1 && q.Confidence == "high"
	})).Return(pairs("BANTEN", 1), nil).Once()
	node, err := tree.Expand(context.Background(), roots[0].ID)
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "BANTEN", node.Children[0].Label)
	repo.AssertExpectations(t)
}

// blockingRepo holds QueryPairs for one path until released.
type blockingRepo struct {
	MockDimensionRepository
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRepo) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	if q.Depth() == 1 {
		b.once.Do(func() { close(b.started) })
		<-b.release
		return pairs("STALE CHILD", 1), nil
	}
	return pairs("JAWA", 45, "SUMATERA", 32), nil
}

func TestDrillTree_StaleExpandDiscarded(t *testing.T) {
	repo := &blockingRepo{started: make(chan struct{}), release: make(chan struct{})}
	tree := olap.NewDrillTree(repo, zap.NewNop())
	require.NoError(t, tree.LoadRoot(context.Background(), domain.Filters{}))
	id := tree.Snapshot()[0].ID

	done := make(chan error, 1)
	go func() {
		_, err := tree.Expand(context.Background(), id)
		done <- err
	}()

	<-repo.started
	loading, ok := tree.Node(id)
	require.True(t, ok)
	assert.True(t, loading.Loading)

	require.NoError(t, tree.Rebuild(context.Background(), domain.Filters{Satellite: "NOAA20"}))
	close(repo.release)

	err := <-done
	assert.True(t, errors.Is(err, errors.ErrTreeRebuilt))
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	for _, root := range tree.Snapshot() {
		assert.Empty(t, root.Children)
		assert.False(t, root.Expanded)
	}
}

func TestDrillTree_ExpandErrors(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)

	_, err := tree.Expand(context.Background(), 9999)
	assert.True(t, errors.Is(err, errors.ErrNodeNotFound))

	id := tree.Snapshot()[0].ID
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).Return(nil, errors.ErrTransportFailure).Once()
	node, err := tree.Expand(context.Background(), id)
	require.NoError(t, err, "transport failure degrades to an empty result")
	assert.False(t, node.Expanded)
	assert.Empty(t, node.Children)
}

func TestDrillTree_VillageCannotExpand(t *testing.T) {
	repo := &MockDimensionRepository{}
	tree := loadedTree(t, repo)
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA")).Return(pairs("JAWA TENGAH", 5), nil).Once()
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA", "JAWA TENGAH")).Return(pairs("KLATEN", 5), nil).Once()
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA", "JAWA TENGAH", "KLATEN")).Return(pairs("PRAMBANAN", 5), nil).Once()
	repo.On("QueryPairs", mock.Anything, pathIs("JAWA", "JAWA TENGAH", "KLATEN", "PRAMBANAN")).Return(pairs("TLOGO", 5), nil).Once()

	district, err := tree.ExpandPath(context.Background(), "jawa", "Jawa Tengah", "KLATEN", "PRAMBANAN")
	require.NoError(t, err)
	require.Len(t, district.Children, 1)
	village := district.Children[0]
	assert.Equal(t, domain.LevelVillage, village.Level)

	_, err = tree.Expand(context.Background(), village.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidHierarchyRequest))

	parent, ok := tree.Parent(village.ID)
	require.True(t, ok)
	assert.Equal(t, district.ID, parent)

	childPairs, ok := tree.ChildPairs(district.ID)
	require.True(t, ok)
	assert.Equal(t, pairs("TLOGO", 5), childPairs)
	repo.AssertExpectations(t)
}
