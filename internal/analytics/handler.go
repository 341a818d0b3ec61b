package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// SnapshotSource loads the last aggregated stats persisted to Postgres.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (*AggregatedStats, error)
}

// Handler serves the analytics endpoints: live in-memory stats and the
// last persisted snapshot.
type Handler struct {
	aggregator *Aggregator
	snapshots  SnapshotSource
	logger     *slog.Logger
}

// NewHandler creates a Handler. snapshots may be nil, which disables the
// snapshot endpoint.
func NewHandler(aggregator *Aggregator, snapshots SnapshotSource) *Handler {
	return &Handler{
		aggregator: aggregator,
		snapshots:  snapshots,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves the live aggregated stats. These reset on restart; the
// snapshot endpoint covers continuity across restarts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.aggregator.Stats())
}

// Snapshot serves the most recent persisted stats snapshot, or 404 when
// none has been saved yet.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "snapshots disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.snapshots.LatestSnapshot(ctx)
	if err != nil {
		h.logger.Error("loading latest snapshot failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
		return
	}
	if stats == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot saved yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
