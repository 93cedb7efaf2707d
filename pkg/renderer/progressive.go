package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize      int // Size of each tile (64x64 recommended)
	InitialCoarse int // Coarse samples per ray for the first preview pass
	MaxPasses     int // Number of passes; sample counts ramp up to the target
	NumWorkers    int // Number of parallel workers (0 = use CPU count)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:      64,
		InitialCoarse: 8,
		MaxPasses:     4, // 8, 16, 32 coarse samples, then the full target
		NumWorkers:    0, // Auto-detect CPU count
	}
}

// Validate rejects unusable pass configurations eagerly, before any tile
// grid or worker pool is built from them
func (c ProgressiveConfig) Validate() error {
	if c.TileSize < 1 {
		return fmt.Errorf("tile size must be at least 1, got %d", c.TileSize)
	}
	if c.InitialCoarse < 1 {
		return fmt.Errorf("initial coarse samples must be at least 1, got %d", c.InitialCoarse)
	}
	if c.MaxPasses < 1 {
		return fmt.Errorf("max passes must be at least 1, got %d", c.MaxPasses)
	}
	return nil
}

// ProgressiveRenderer renders a frame in multiple passes of increasing
// sample counts, streaming intermediate images so a viewer can show a fast
// preview that sharpens toward the full-quality result.
type ProgressiveRenderer struct {
	target        Config // Full-quality sample counts for the final pass
	camera        *Camera
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	results       [][]core.RenderResult // Shared frame buffer (global image coordinates)
	workerPool    *WorkerPool
	logger        core.Logger
}

// NewProgressiveRenderer creates a progressive renderer. The factory builds
// one Renderer per worker over the shared parameter blob.
func NewProgressiveRenderer(factory RendererFactory, target Config, camera *Camera, width, height int, config ProgressiveConfig, logger core.Logger) (*ProgressiveRenderer, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("progressive config: %w", err)
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	results := make([][]core.RenderResult, height)
	for y := range results {
		results[y] = make([]core.RenderResult, width)
	}

	workerPool, err := NewWorkerPool(factory, camera, width, height, config.NumWorkers)
	if err != nil {
		return nil, err
	}

	return &ProgressiveRenderer{
		target:     target,
		camera:     camera,
		width:      width,
		height:     height,
		config:     config,
		tiles:      NewTileGrid(width, height, config.TileSize),
		results:    results,
		workerPool: workerPool,
		logger:     logger,
	}, nil
}

// samplesForPass calculates the coarse/fine sample counts for a given pass.
// Counts double each pass from the initial preview budget; the final pass
// always runs the full target.
func (pr *ProgressiveRenderer) samplesForPass(passNumber int) (coarse, fine int) {
	if passNumber >= pr.config.MaxPasses {
		return pr.target.CoarseCount, pr.target.FineCount
	}

	coarse = pr.config.InitialCoarse << (passNumber - 1)
	if coarse >= pr.target.CoarseCount {
		return pr.target.CoarseCount, pr.target.FineCount
	}

	// Scale fine samples proportionally to the coarse budget
	fine = pr.target.FineCount * coarse / pr.target.CoarseCount
	return coarse, fine
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRenderer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	coarse, fine := pr.samplesForPass(passNumber)

	pr.logger.Printf("Pass %d: %d coarse + %d fine samples per ray (using %d workers)...\n",
		passNumber, coarse, fine, pr.workerPool.GetNumWorkers())

	if passNumber == 1 {
		pr.workerPool.Start()
	}

	// Submit all tiles as tasks
	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:    tile,
			Coarse:  coarse,
			Fine:    fine,
			TaskID:  taskID,
			Results: pr.results,
		})
	}

	// Wait for all tiles and dispatch callbacks in a single goroutine
	stats := RenderStats{}
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, RenderStats{}, result.Error
		}

		tile := pr.tiles[result.TaskID]
		tile.PassesCompleted++
		stats.merge(result.Stats)

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   pr.extractTileImage(tile),
				PassNumber:  passNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}

	return pr.assembleImage(), stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication. The caller
// should read from the returned channels in separate goroutines. If
// options.TileUpdates is false, the tile channel is closed immediately.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		pr.logger.Printf("Starting progressive render with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			// Check if the client disconnected before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the tile update
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%.1f samples/ray)\n",
				pass, time.Since(startTime), stats.AverageSamples)

			coarse, _ := pr.samplesForPass(pass)
			isLast := pass == pr.config.MaxPasses || coarse >= pr.target.CoarseCount

			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				return
			}

			// Early passes ramp toward the target; once we hit it, stop
			if isLast {
				break
			}
		}
	}()

	return passChan, tileChan, errChan
}

// extractTileImage extracts a tile image from the shared frame buffer
func (pr *ProgressiveRenderer) extractTileImage(tile *Tile) *image.RGBA {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, resultToColor(pr.results[y][x]))
		}
	}

	return tileImage
}

// assembleImage creates an image from the current state of the frame buffer
func (pr *ProgressiveRenderer) assembleImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			img.SetRGBA(x, y, resultToColor(pr.results[y][x]))
		}
	}

	return img
}
