// Package server exposes the binaural pipeline over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-binaural/binaural"
)

// Routes.
const (
	RenderPath = "/v1/render"
	BandsPath  = "/v1/bands"
	HealthPath = "/healthz"
)

// OutputFilename is advertised in the Content-Disposition of renderings.
const OutputFilename = "binaural_audio.wav"

// Server handles render requests.
type Server struct {
	pipeline    *binaural.Pipeline
	cache       *RenderCache
	logger      *zap.Logger
	defaultBand string
	maxUpload   int64
	mux         *http.ServeMux
}

// Options configures a Server.
type Options struct {
	DefaultBand    string
	MaxUploadBytes int64
}

// New builds a Server. A nil cache disables caching.
func New(p *binaural.Pipeline, cache *RenderCache, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		pipeline:    p,
		cache:       cache,
		logger:      logger,
		defaultBand: opts.DefaultBand,
		maxUpload:   opts.MaxUploadBytes,
		mux:         http.NewServeMux(),
	}

	s.mux.HandleFunc(RenderPath, s.handleRender)
	s.mux.HandleFunc(BandsPath, s.handleBands)
	s.mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true}) //nolint:errcheck
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type bandResponse struct {
	Name     string  `json:"name"`
	MinHz    float64 `json:"min_hz"`
	MaxHz    float64 `json:"max_hz"`
	CenterHz float64 `json:"center_hz"`
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}

	bands := binaural.Bands()
	resp := make([]bandResponse, len(bands))

	for i, b := range bands {
		resp[i] = bandResponse{Name: b.Name, MinHz: b.MinHz, MaxHz: b.MaxHz, CenterHz: b.CenterHz()}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	band := r.URL.Query().Get("band")
	if band == "" {
		band = s.defaultBand
	}

	id := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", id), zap.String("band", band))

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "failed to read upload", http.StatusBadRequest)

		return
	}

	key := CacheKey(body, band)

	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			logger.Debug("render served from cache")
			s.writeWAV(w, id, "hit", data)

			return
		}
	}

	start := time.Now()

	data, err := s.pipeline.Process(r.Context(), bytes.NewReader(body), band)
	if err != nil {
		status := statusFor(err)
		logger.Warn("render failed", zap.Int("status", status), zap.Error(err))
		http.Error(w, err.Error(), status)

		return
	}

	logger.Info("render served",
		zap.Int("input_bytes", len(body)),
		zap.Int("output_bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if s.cache != nil {
		s.cache.Add(key, data)
	}

	s.writeWAV(w, id, "miss", data)
}

func (s *Server) writeWAV(w http.ResponseWriter, id, cache string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", "audio/wav")
	h.Set("Content-Disposition", `attachment; filename="`+OutputFilename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Request-ID", id)
	h.Set("X-Cache", cache)
	w.Write(data) //nolint:errcheck
}

func statusFor(err error) int {
	stage, ok := binaural.FailedStage(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch stage {
	case binaural.StageBand:
		return http.StatusBadRequest
	case binaural.StageDecode:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
