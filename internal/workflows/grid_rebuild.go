package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// GridRebuildInput is the input for the grid rebuild workflow.
type GridRebuildInput struct {
	TileSize float64
	North    float64
	South    float64
	East     float64
	West     float64
}

// GridRebuildResult summarizes a completed rebuild.
type GridRebuildResult struct {
	SnapshotID string
	TileCount  int
}

// GridRebuildWorkflow regenerates the land grid at one resolution,
// persists it as a new snapshot, and announces the snapshot over NATS.
// If persisting the tiles fails, the half-written snapshot is deleted
// (saga compensation).
func GridRebuildWorkflow(ctx workflow.Context, input GridRebuildInput) (*GridRebuildResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting grid rebuild workflow", "tileSize", input.TileSize)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Generate the land tiles for the requested extent.
	var tileCount int
	err := workflow.ExecuteActivity(ctx, "GenerateLandGrid", input).Get(ctx, &tileCount)
	if err != nil {
		return nil, err
	}

	// Step 2: Create the snapshot header.
	var snapshotID string
	err = workflow.ExecuteActivity(ctx, "CreateSnapshot", input.TileSize, tileCount).Get(ctx, &snapshotID)
	if err != nil {
		return nil, err
	}

	// Step 3: Persist the tiles under the snapshot.
	err = workflow.ExecuteActivity(ctx, "PersistTiles", snapshotID, input).Get(ctx, nil)
	if err != nil {
		logger.Warn("tile persistence failed, compensating", "error", err)
		// Compensate: drop the half-written snapshot.
		_ = workflow.ExecuteActivity(ctx, "DeleteSnapshot", snapshotID).Get(ctx, nil)
		return nil, err
	}

	// Step 4: Announce the new snapshot so caches can invalidate.
	err = workflow.ExecuteActivity(ctx, "AnnounceSnapshot", snapshotID, input.TileSize).Get(ctx, nil)
	if err != nil {
		// The snapshot is valid even if the announcement is lost;
		// subscribers recover on the next readiness poll.
		logger.Warn("snapshot announcement failed", "error", err)
	}

	logger.Info("Grid rebuild complete", "snapshotID", snapshotID, "tiles", tileCount)
	return &GridRebuildResult{SnapshotID: snapshotID, TileCount: tileCount}, nil
}
