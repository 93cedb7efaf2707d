// Package server exposes a radiance field over HTTP: progressive renders
// stream to the browser via Server-Sent Events, and a small JSON API reports
// model health.
package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/field"
	"github.com/df07/go-nerf-renderer/pkg/network"
	"github.com/df07/go-nerf-renderer/pkg/scene"
)

// Config holds server settings, populated from the environment
type Config struct {
	Port      int    `env:"NERF_PORT" envDefault:"8080"`
	StaticDir string `env:"NERF_STATIC_DIR" envDefault:"static"`
	ModelPath string `env:"NERF_MODEL"`
	ScenePath string `env:"NERF_SCENE"`
}

// Server handles web requests for the progressive field renderer. The scene
// and parameter blob are loaded once at startup; each render request builds
// its own per-worker field instances over the shared blob.
type Server struct {
	config Config
	scene  *scene.Scene
	model  field.ModelConfig
	params *network.Parameters
}

// NewServer creates a web server, loading the scene and model snapshot named
// by the config. With no model path the built-in demo sphere is served.
func NewServer(config Config) (*Server, error) {
	sceneObj := scene.NewDefaultScene()
	if config.ScenePath != "" {
		var err error
		sceneObj, err = scene.Load(config.ScenePath)
		if err != nil {
			return nil, err
		}
	}

	modelConfig := field.DefaultModelConfig()
	var params *network.Parameters
	if config.ModelPath != "" {
		var err error
		params, err = network.LoadSnapshot(config.ModelPath)
		if err != nil {
			return nil, err
		}
		log.Printf("Loaded model snapshot from %s", config.ModelPath)
	} else {
		log.Printf("No model configured, serving the built-in demo sphere")
		params = field.DemoParameters(modelConfig)
	}

	return &Server{
		config: config,
		scene:  sceneObj,
		model:  modelConfig,
		params: params,
	}, nil
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Width     int `json:"width"`     // Image width
	Height    int `json:"height"`    // Image height
	Coarse    int `json:"coarse"`    // Coarse samples per ray at full quality
	Fine      int `json:"fine"`      // Fine samples per ray at full quality
	MaxPasses int `json:"maxPasses"` // Number of progressive passes
}

// Start starts the web server
func (s *Server) Start() error {
	// Serve static files
	http.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))

	// API endpoints
	http.HandleFunc("/api/render", s.handleRender)
	http.HandleFunc("/api/health", s.handleHealth)
	http.HandleFunc("/api/model-info", s.handleModelInfo)

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, nil)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// levelStats summarizes one hash table level for the model-info endpoint
type levelStats struct {
	Level         int     `json:"level"`
	Entries       int     `json:"entries"`
	MeanMagnitude float64 `json:"meanMagnitude"`
	MaxMagnitude  float64 `json:"maxMagnitude"`
	UsageRatio    float64 `json:"usageRatio"` // Fraction of entries that moved away from init
}

// handleModelInfo reports the loaded model's shape and per-level hash table
// usage. Usage ratio counts entries whose magnitude exceeds the random-init
// scale, a cheap proxy for how much of each table the training touched.
func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	const usedThreshold = 1e-4

	levels := make([]levelStats, len(s.params.HashTable))
	for i, table := range s.params.HashTable {
		featureDim := s.model.HashGrid.FeatureDim
		entries := len(table) / featureDim

		var sum, max float64
		used := 0
		for e := 0; e < entries; e++ {
			var mag float32
			for f := 0; f < featureDim; f++ {
				mag += math32.Abs(table[e*featureDim+f])
			}
			mag /= float32(featureDim)
			sum += float64(mag)
			if float64(mag) > max {
				max = float64(mag)
			}
			if mag > usedThreshold {
				used++
			}
		}

		levels[i] = levelStats{
			Level:         i,
			Entries:       entries,
			MeanMagnitude: sum / float64(entries),
			MaxMagnitude:  max,
			UsageRatio:    float64(used) / float64(entries),
		}
	}

	response := map[string]interface{}{
		"scene": s.scene.Name,
		"model": map[string]interface{}{
			"encoding":     s.model.Encoding,
			"levels":       s.model.HashGrid.Levels,
			"tableSize":    s.model.HashGrid.TableSize(),
			"featureDim":   s.model.HashGrid.FeatureDim,
			"networkWidth": s.model.NetworkWidth,
			"shDegree":     s.model.SHDegree,
			"useViewDirs":  s.model.UseViewDirs,
		},
		"hashTables": levels,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	// Parse and validate all parameters using helper functions
	var err error
	if req.Width, err = parseIntParam(r.URL.Query(), "width", 400, 100, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(r.URL.Query(), "height", 400, 100, 2000); err != nil {
		return nil, err
	}
	if req.Coarse, err = parseIntParam(r.URL.Query(), "coarse", 64, 1, 1024); err != nil {
		return nil, err
	}
	if req.Fine, err = parseIntParam(r.URL.Query(), "fine", 128, 0, 2048); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(r.URL.Query(), "maxPasses", 4, 1, 16); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Coarse+req.Fine > 256 {
		log.Printf("Render warning: Large image with high sample counts may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
