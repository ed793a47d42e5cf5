package content

import (
	"encoding/json"
	"errors"
	"net/http"

	"sitedata/config"
	"sitedata/internal/content/model"
	"sitedata/internal/content/service"
	"sitedata/middleware"
	"sitedata/pkg/logger"
)

type ContentHandler struct {
	Service *service.ContentService
	Cfg     *config.Config
}

func NewContentHandler(svc *service.ContentService, cfg *config.Config) *ContentHandler {
	return &ContentHandler{Service: svc, Cfg: cfg}
}

// GetDocument is the public read path. Responses are marked
// non-cacheable; clients additionally append a v= buster which is simply
// ignored here.
func (h *ContentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Missing name parameter", http.StatusBadRequest)
		return
	}

	data, err := h.Service.GetDocument(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// SaveDocument is the signed-upload proxy: it re-verifies the identity
// token against the admin allowlist and performs the write server-side.
// The token may arrive via Authorization header, token query param, or
// the request body's idToken field.
func (h *ContentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeSaveError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req model.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSaveError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokenString := middleware.TokenFromRequest(r)
	if tokenString == "" {
		tokenString = req.IDToken
	}
	email, err := middleware.VerifyAdminToken(h.Cfg, tokenString)
	if err != nil {
		logger.Sugar.Warnf("Rejected save of %s: %v", req.Name, err)
		writeSaveError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.SaveDocument(r.Context(), req.Name, req.Data); err != nil {
		logger.Sugar.Errorf("Error saving document %s for %s: %v", req.Name, email, err)
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUnknownDocument) || errors.Is(err, service.ErrInvalidContent) {
			status = http.StatusBadRequest
		}
		writeSaveError(w, status, err.Error())
		return
	}

	logger.Sugar.Infof("Document %s saved by %s", req.Name, email)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.SaveResponse{OK: true})
}

func (h *ContentHandler) Names(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.NamesResponse{Names: h.Service.Names()})
}

// Export dumps every document as one JSON object. Admin only; the router
// wraps it with the auth middleware.
func (h *ContentHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(h.Service.Export(r.Context()))
}

func writeSaveError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.SaveResponse{Error: msg})
}
