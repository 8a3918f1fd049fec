package export

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/metalgrid/tcpgraph/internal/config"
	"github.com/metalgrid/tcpgraph/internal/engine/pipeline"
	"github.com/metalgrid/tcpgraph/internal/model"
)

// BandwidthProvider is the read-only view of the pipeline the HTTP API serves.
type BandwidthProvider interface {
	History() []model.BandwidthSample
	Maxima() (inboundBps, outboundBps float64)
	Stats() pipeline.Stats
}

// Server exposes the current sample, the bounded history, the running maxima,
// and the pipeline counters as JSON.
type Server struct {
	server   *http.Server
	provider BandwidthProvider
}

// NewServer builds the HTTP API server with its routes.
func NewServer(cfg config.HTTPConfig, provider BandwidthProvider) *Server {
	s := &Server{provider: provider}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/bandwidth/current", s.currentHandler).Methods("GET")
	r.HandleFunc("/api/v1/bandwidth/history", s.historyHandler).Methods("GET")
	r.HandleFunc("/api/v1/bandwidth/stats", s.statsHandler).Methods("GET")

	s.server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// currentHandler serves the most recent bandwidth sample.
func (s *Server) currentHandler(w http.ResponseWriter, r *http.Request) {
	history := s.provider.History()
	if len(history) == 0 {
		http.Error(w, "no samples yet", http.StatusNotFound)
		return
	}
	writeJSON(w, history[len(history)-1])
}

// historyHandler serves the retained bandwidth history in chronological order.
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.provider.History())
}

// statsHandler serves the running maxima and the pipeline counters.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	maxIn, maxOut := s.provider.Maxima()
	stats := s.provider.Stats()
	writeJSON(w, struct {
		MaxInboundBps  float64 `json:"max_inbound_bps"`
		MaxOutboundBps float64 `json:"max_outbound_bps"`
		FramesSeen     uint64  `json:"frames_seen"`
		FramesDropped  uint64  `json:"frames_dropped"`
		TransitBytes   uint64  `json:"transit_bytes"`
	}{
		MaxInboundBps:  maxIn,
		MaxOutboundBps: maxOut,
		FramesSeen:     stats.FramesSeen,
		FramesDropped:  stats.FramesDropped,
		TransitBytes:   stats.TransitBytes,
	})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
