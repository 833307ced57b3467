package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"memes/internal/catalog"
	"memes/internal/identity"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type MemeLister interface {
	List(ctx context.Context, f catalog.Filter) ([]catalog.AnnotatedMeme, error)
}

type FavoriteToggler interface {
	Toggle(ctx context.Context, userID string, memeID uint64) (catalog.ToggleResult, error)
}

type MemeWriter interface {
	Add(ctx context.Context, in catalog.MemeInput) (uint64, error)
	Seed(ctx context.Context, set []catalog.MemeInput) (int, error)
}

type MemeHandler struct {
	Reader MemeLister
	Ledger FavoriteToggler
	Writer MemeWriter
	// SeedSet is what Seed inserts.
	SeedSet []catalog.MemeInput
	Log     *zap.Logger
}

func (h *MemeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	memes, err := h.Reader.List(r.Context(), catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		UserID:   identity.UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"memes": memes})
}

type actionReq struct {
	Action string `json:"action"`
}

type toggleReq struct {
	MemeID uint64 `json:"meme_id"`
}

// Action dispatches POST /memes on the body's "action" field.
func (h *MemeHandler) Action(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var req actionReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	switch req.Action {
	case "toggle_favorite":
		h.toggle(w, r, body)
	case "add_meme":
		h.add(w, r, body)
	default:
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
	}
}

func (h *MemeHandler) toggle(w http.ResponseWriter, r *http.Request, body []byte) {
	var req toggleReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	res, err := h.Ledger.Toggle(r.Context(), identity.UserIDFromContext(r.Context()), req.MemeID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"isFavorite": res.IsFavorite,
	})
}

func (h *MemeHandler) add(w http.ResponseWriter, r *http.Request, body []byte) {
	var in catalog.MemeInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	id, err := h.Writer.Add(r.Context(), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"meme_id": id,
	})
}

func (h *MemeHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.Writer.Seed(r.Context(), h.SeedSet)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"inserted": n,
		"message":  fmt.Sprintf("Inserted %d memes", n),
	})
}
