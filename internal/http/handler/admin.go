package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, memeID *uint64) (uint64, error)
}

type AdminHandler struct {
	Jobs ReconcileEnqueuer
	Log  *zap.Logger
}

type reconcileReq struct {
	MemeID *uint64 `json:"meme_id"`
}

// Reconcile queues a favorites_count rebuild. An empty body means every meme.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileReq
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.MemeID != nil && *req.MemeID == 0 {
		writeMessage(w, http.StatusBadRequest, "invalid meme_id")
		return
	}

	id, err := h.Jobs.EnqueueReconcile(r.Context(), req.MemeID)
	if err != nil {
		h.Log.Error("enqueue reconcile failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "failed enqueue job")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": id})
}
