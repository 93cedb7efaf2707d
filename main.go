package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/df07/go-nerf-renderer/pkg/core"
	"github.com/df07/go-nerf-renderer/pkg/field"
	"github.com/df07/go-nerf-renderer/pkg/network"
	"github.com/df07/go-nerf-renderer/pkg/renderer"
	"github.com/df07/go-nerf-renderer/pkg/scene"
)

func main() {
	scenePath := flag.String("scene", "", "Scene TOML file (empty for the built-in default scene)")
	modelPath := flag.String("model", "", "Parameter snapshot to load (empty for an untrained field)")
	width := flag.Int("width", 400, "Image width")
	height := flag.Int("height", 400, "Image height")
	coarse := flag.Int("coarse", 64, "Coarse samples per ray")
	fine := flag.Int("fine", 128, "Fine samples per ray")
	supersample := flag.Int("supersample", 1, "Render at NxN scale and downscale")
	format := flag.String("format", "png", "Output format: 'png' or 'webp'")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("NeRF Renderer")
		fmt.Println("Usage: nerf-render [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Renders a trained radiance field snapshot to an image.")
		fmt.Println("Without -model, a built-in demo sphere is rendered.")
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
		return
	}

	fmt.Println("Starting NeRF renderer...")

	// Load the scene description
	var sceneObj *scene.Scene
	var err error
	if *scenePath != "" {
		sceneObj, err = scene.Load(*scenePath)
		if err != nil {
			fmt.Printf("Error loading scene: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("Using default scene...")
		sceneObj = scene.NewDefaultScene()
	}

	// Load or initialize the parameter blob
	modelConfig := field.DefaultModelConfig()
	var params *network.Parameters
	if *modelPath != "" {
		params, err = network.LoadSnapshot(*modelPath)
		if err != nil {
			fmt.Printf("Error loading model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded model snapshot from %s\n", *modelPath)
	} else {
		fmt.Println("No model given, using the built-in demo sphere...")
		params = field.DemoParameters(modelConfig)
	}

	renderConfig := renderer.Config{
		Near:        sceneObj.Near,
		Far:         sceneObj.Far,
		CoarseCount: *coarse,
		FineCount:   *fine,
		Mode:        core.ModeInference,
	}

	// One field per worker over the shared read-only blob
	factory := func() (*renderer.Renderer, error) {
		f, err := field.New(modelConfig, sceneObj.Bounds(), params)
		if err != nil {
			return nil, err
		}
		return renderer.NewRenderer(f, sceneObj.BackgroundColor(), renderConfig)
	}

	renderW := *width * *supersample
	renderH := *height * *supersample
	lookFrom, lookAt, up := sceneObj.Camera.CameraVectors()
	camera := renderer.NewCamera(lookFrom, lookAt, up, sceneObj.Camera.VFov, float32(renderW)/float32(renderH))

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.MaxPasses = 1 // CLI renders the full-quality pass directly

	prog, err := renderer.NewProgressiveRenderer(factory, renderConfig, camera, renderW, renderH, progressiveConfig, nil)
	if err != nil {
		fmt.Printf("Error creating renderer: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()
	img, stats, err := renderImage(prog)
	if err != nil {
		fmt.Printf("Render error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Rays: %d, field evaluations: %d (%.1f per ray)\n",
		stats.TotalRays, stats.TotalSamples, stats.AverageSamples)

	if *supersample > 1 {
		img = downscale(img, *width, *height)
	}

	// Create output directory for this scene
	outputDir := filepath.Join("output", sceneObj.Name)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, *format))
	if err := saveImage(img, filename, *format); err != nil {
		fmt.Printf("Error saving image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render saved as %s\n", filename)
}

// renderImage runs the progressive renderer to completion and returns the
// final pass
func renderImage(prog *renderer.ProgressiveRenderer) (*image.RGBA, renderer.RenderStats, error) {
	passChan, _, errChan := prog.RenderProgressive(context.Background(), renderer.RenderOptions{})

	var img *image.RGBA
	var stats renderer.RenderStats
	for result := range passChan {
		img = result.Image
		stats = result.Stats
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if img == nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("renderer produced no passes")
	}
	return img, stats, nil
}

// downscale resamples a supersampled render to the requested output size
func downscale(img *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// saveImage writes the image in the requested format
func saveImage(img image.Image, filename, format string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch format {
	case "webp":
		return nativewebp.Encode(file, img, nil)
	case "png":
		return png.Encode(file, img)
	default:
		return fmt.Errorf("unknown format %q (want png or webp)", format)
	}
}
