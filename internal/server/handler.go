// Package server exposes reverse lookups over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/binding"
	"github.com/MeKo-Tech/reversejp/internal/geojson"
	"github.com/MeKo-Tech/reversejp/internal/metrics"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
	"github.com/paulmach/orb"
)

// Config configures the lookup handler.
type Config struct {
	CacheControl string
}

// Handler serves lookups from a lazily built engine.
type Handler struct {
	engine       *binding.Lazy
	logger       *slog.Logger
	cacheControl string
}

// LookupResponse is the body of /v1/reverse.
type LookupResponse struct {
	Lon        float64            `json:"lon"`
	Lat        float64            `json:"lat"`
	Approx     bool               `json:"approx"`
	Offset     [2]float64         `json:"offset"`
	Properties []types.Properties `json:"properties"`
}

// MapResponse is the body of /v1/reverse/map.
type MapResponse struct {
	Properties map[string]types.Properties `json:"properties"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a lookup handler.
func New(engine *binding.Lazy, cfg Config, logger *slog.Logger) *Handler {
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	return &Handler{
		engine:       engine,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}
}

// Routes returns the mux with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/reverse", withCORS(http.HandlerFunc(h.serveLookup)))
	mux.Handle("/v1/reverse/map", withCORS(http.HandlerFunc(h.serveMap)))
	mux.Handle("/v1/reverse.geojson", withCORS(http.HandlerFunc(h.serveGeoJSON)))
	mux.HandleFunc("/healthz", h.serveHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (h *Handler) serveLookup(w http.ResponseWriter, r *http.Request) {
	lon, lat, ok := h.coords(w, r)
	if !ok {
		return
	}
	eng, ok := h.load(w)
	if !ok {
		return
	}

	props, probe := h.find(eng, "reverse", lon, lat)
	h.writeJSON(w, http.StatusOK, LookupResponse{
		Lon:        lon,
		Lat:        lat,
		Approx:     probe.Matched && !probe.Exact(),
		Offset:     [2]float64{probe.DX, probe.DY},
		Properties: props,
	})
}

func (h *Handler) serveMap(w http.ResponseWriter, r *http.Request) {
	lon, lat, ok := h.coords(w, r)
	if !ok {
		return
	}
	eng, ok := h.load(w)
	if !ok {
		return
	}

	props, _ := h.find(eng, "reverse_map", lon, lat)
	h.writeJSON(w, http.StatusOK, MapResponse{Properties: reversejp.AsMap(props)})
}

func (h *Handler) serveGeoJSON(w http.ResponseWriter, r *http.Request) {
	lon, lat, ok := h.coords(w, r)
	if !ok {
		return
	}
	eng, ok := h.load(w)
	if !ok {
		return
	}

	props, _ := h.find(eng, "reverse_geojson", lon, lat)
	data, err := geojson.ToFeatureCollection(orb.Point{lon, lat}, props).MarshalJSON()
	if err != nil {
		h.log().Error("failed to encode GeoJSON", "error", err)
		http.Error(w, "failed to encode GeoJSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", h.cacheControl)
	if _, err := w.Write(data); err != nil {
		h.log().Error("failed to write response", "error", err)
	}
}

func (h *Handler) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	if !h.engine.Ready() {
		if _, err := h.engine.Get(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "engine unavailable: %v", err)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) find(eng *reversejp.Engine, endpoint string, lon, lat float64) ([]types.Properties, reversejp.Probe) {
	start := time.Now()
	props, probe := eng.FindWithProbe(lon, lat)
	elapsed := time.Since(start)

	metrics.ObserveQuery(endpoint, float64(elapsed.Microseconds())/1000, probe.Matched, probe.Exact())
	h.log().Debug("lookup",
		"endpoint", endpoint,
		"lon", lon,
		"lat", lat,
		"matches", len(props),
		"dx", probe.DX,
		"dy", probe.DY,
		"elapsed", elapsed,
	)
	return props, probe
}

// coords parses the lon and lat query parameters. On failure it writes a 400
// response and returns false.
func (h *Handler) coords(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	q := r.URL.Query()
	lon, err := parseCoord(q.Get("lon"), 180)
	if err != nil {
		metrics.BadRequestsTotal.Inc()
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lon: " + err.Error()})
		return 0, 0, false
	}
	lat, err := parseCoord(q.Get("lat"), 90)
	if err != nil {
		metrics.BadRequestsTotal.Inc()
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat: " + err.Error()})
		return 0, 0, false
	}
	return lon, lat, true
}

func (h *Handler) load(w http.ResponseWriter) (*reversejp.Engine, bool) {
	eng, err := h.engine.Get()
	if err != nil {
		h.log().Error("engine unavailable", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return nil, false
	}
	return eng, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", h.cacheControl)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log().Error("failed to encode response", "error", err)
	}
}

func (h *Handler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseCoord parses a decimal degree value and checks |v| <= limit.
func parseCoord(s string, limit float64) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return v, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
