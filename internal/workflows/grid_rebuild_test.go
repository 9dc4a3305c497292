package workflows

import (
	"context"
	"sync"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/etxarri/terragrid/internal/core/domain"
	"github.com/etxarri/terragrid/internal/core/usecases"
)

type fakeMask struct{}

func (fakeMask) IsLand(lat, lon float64) bool      { return true }
func (fakeMask) RegionFor(lat, lon float64) string { return "Testland" }

// fakeTileRepo is an in-memory LandTileRepository.
type fakeTileRepo struct {
	mu         sync.Mutex
	snapshots  map[string]*domain.GridSnapshot
	tiles      map[string]map[string]domain.LandTile
	failUpsert bool
}

func newFakeTileRepo() *fakeTileRepo {
	return &fakeTileRepo{
		snapshots: make(map[string]*domain.GridSnapshot),
		tiles:     make(map[string]map[string]domain.LandTile),
	}
}

func (r *fakeTileRepo) CreateSnapshot(ctx context.Context, s *domain.GridSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.snapshots[s.ID] = &cp
	r.tiles[s.ID] = make(map[string]domain.LandTile)
	return nil
}

func (r *fakeTileRepo) UpsertTiles(ctx context.Context, snapshotID string, tiles []domain.LandTile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpsert {
		return context.DeadlineExceeded
	}
	for _, t := range tiles {
		r.tiles[snapshotID][t.ID] = t
	}
	return nil
}

func (r *fakeTileRepo) GetTile(ctx context.Context, snapshotID, tileID string) (*domain.LandTile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tiles[snapshotID][tileID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *fakeTileRepo) LatestSnapshot(ctx context.Context, tileSize float64) (*domain.GridSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.GridSnapshot
	for _, s := range r.snapshots {
		if s.TileSize != tileSize {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (r *fakeTileRepo) CountByRegion(ctx context.Context, snapshotID string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, t := range r.tiles[snapshotID] {
		counts[t.Region]++
	}
	return counts, nil
}

func (r *fakeTileRepo) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, snapshotID)
	delete(r.tiles, snapshotID)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	rebuilt []string
}

func (p *fakePublisher) PublishLODState(ctx context.Context, state *domain.LODState) error {
	return nil
}

func (p *fakePublisher) PublishGridRebuilt(ctx context.Context, snapshot *domain.GridSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rebuilt = append(p.rebuilt, snapshot.ID)
	return nil
}

func (p *fakePublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

func newTestActivities(repo *fakeTileRepo, pub *fakePublisher) *GridActivities {
	return &GridActivities{
		Grid:   usecases.NewGridService(fakeMask{}, nil),
		Tiles:  repo,
		Events: pub,
	}
}

func TestGridRebuildWorkflow_Success(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	repo := newFakeTileRepo()
	pub := &fakePublisher{}
	acts := newTestActivities(repo, pub)

	env.RegisterWorkflow(GridRebuildWorkflow)
	env.RegisterActivity(acts.GenerateLandGrid)
	env.RegisterActivity(acts.CreateSnapshot)
	env.RegisterActivity(acts.PersistTiles)
	env.RegisterActivity(acts.AnnounceSnapshot)
	env.RegisterActivity(acts.DeleteSnapshot)

	input := GridRebuildInput{TileSize: 1.0, North: 2, South: 0, East: 2, West: 0}
	env.ExecuteWorkflow(GridRebuildWorkflow, input)

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}

	var result GridRebuildResult
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatalf("get result: %v", err)
	}

	// 2x2 degrees at 1.0 over an all-land mask is 4 tiles.
	if result.TileCount != 4 {
		t.Errorf("expected 4 tiles, got %d", result.TileCount)
	}
	if result.SnapshotID == "" {
		t.Error("expected a snapshot ID")
	}
	if len(repo.tiles[result.SnapshotID]) != 4 {
		t.Errorf("expected 4 persisted tiles, got %d", len(repo.tiles[result.SnapshotID]))
	}
	if len(pub.rebuilt) != 1 || pub.rebuilt[0] != result.SnapshotID {
		t.Errorf("expected one rebuilt event for %s, got %v", result.SnapshotID, pub.rebuilt)
	}
}

func TestGridRebuildWorkflow_CompensatesOnPersistFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	repo := newFakeTileRepo()
	repo.failUpsert = true
	pub := &fakePublisher{}
	acts := newTestActivities(repo, pub)

	env.RegisterWorkflow(GridRebuildWorkflow)
	env.RegisterActivity(acts.GenerateLandGrid)
	env.RegisterActivity(acts.CreateSnapshot)
	env.RegisterActivity(acts.PersistTiles)
	env.RegisterActivity(acts.AnnounceSnapshot)
	env.RegisterActivity(acts.DeleteSnapshot)

	input := GridRebuildInput{TileSize: 1.0, North: 2, South: 0, East: 2, West: 0}
	env.ExecuteWorkflow(GridRebuildWorkflow, input)

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err == nil {
		t.Fatal("expected workflow error when persistence fails")
	}

	// The half-written snapshot must be gone.
	if len(repo.snapshots) != 0 {
		t.Errorf("expected snapshot to be deleted, found %d", len(repo.snapshots))
	}
	if len(pub.rebuilt) != 0 {
		t.Errorf("expected no rebuilt events, got %v", pub.rebuilt)
	}
}

func TestGridRebuildWorkflow_UnsupportedTileSizeFails(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	repo := newFakeTileRepo()
	acts := newTestActivities(repo, &fakePublisher{})

	env.RegisterWorkflow(GridRebuildWorkflow)
	env.RegisterActivity(acts.GenerateLandGrid)
	env.RegisterActivity(acts.CreateSnapshot)
	env.RegisterActivity(acts.PersistTiles)
	env.RegisterActivity(acts.AnnounceSnapshot)
	env.RegisterActivity(acts.DeleteSnapshot)

	env.ExecuteWorkflow(GridRebuildWorkflow, GridRebuildInput{TileSize: 0.3})

	if err := env.GetWorkflowError(); err == nil {
		t.Fatal("expected workflow error for unsupported tile size")
	}
	if len(repo.snapshots) != 0 {
		t.Errorf("expected no snapshots, got %d", len(repo.snapshots))
	}
}
