package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// RendererFactory builds one Renderer per worker. Each instance carries its
// own field scratch buffers while sharing the read-only parameter blob, so
// workers never synchronize on it.
type RendererFactory func() (*Renderer, error)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile    *Tile
	Coarse  int // Coarse samples per ray for this pass
	Fine    int // Fine samples per ray for this pass
	TaskID  int // For deterministic ordering
	Results [][]core.RenderResult // Shared frame buffer to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel tile rendering. Rays are independent, so the
// only coordination is task distribution: tiles have non-overlapping bounds
// and workers write disjoint regions of the shared frame buffer.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID            int
	renderer      *Renderer
	camera        *Camera
	width, height int
	taskQueue     chan TileTask
	resultQueue   chan TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(factory RendererFactory, camera *Camera, width, height, numWorkers int) (*WorkerPool, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Buffer for the worst case of 8x8 tiles
	maxTiles := ((width + 7) / 8) * ((height + 7) / 8)

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),
		resultQueue: make(chan TileResult, maxTiles),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		renderer, err := factory()
		if err != nil {
			return nil, err
		}
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    renderer,
			camera:      camera,
			width:       width,
			height:      height,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp, nil
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Configure this pass's per-ray sample budget
		w.renderer.SetSampleCounts(task.Coarse, task.Fine)

		// Render the tile directly into the shared frame buffer.
		// Tiles have non-overlapping bounds, so this is thread-safe.
		stats := w.renderTile(task.Tile, task.Results)

		w.resultQueue <- TileResult{TaskID: task.TaskID, Stats: stats}
	}
}

// renderTile marches one ray per pixel across the tile's bounds
func (w *Worker) renderTile(tile *Tile, results [][]core.RenderResult) RenderStats {
	rng := core.NewRandomSampler(tile.Random)
	stats := RenderStats{}

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			s := (float32(x) + 0.5) / float32(w.width)
			t := (float32(w.height-1-y) + 0.5) / float32(w.height)

			result, samples := w.renderer.RenderRay(w.camera.GetRay(s, t), rng)
			results[y][x] = result

			stats.TotalRays++
			stats.TotalSamples += int64(samples)
		}
	}

	stats.finalize()
	return stats
}
