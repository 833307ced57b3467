package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memes/internal/catalog"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeError maps catalog errors to status codes. Storage failures are
// logged and hidden from the caller.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		ve *catalog.ValidationError
		nf *catalog.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeMessage(w, http.StatusNotFound, nf.Error())
	case catalog.IsConflict(err):
		writeMessage(w, http.StatusConflict, "meme with this title already exists")
	default:
		log.Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}
