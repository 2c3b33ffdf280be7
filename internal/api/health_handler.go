package api

import (
	"net/http"
	"time"

	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/domain/knowledge"
	"krishisahay/internal/provider"
)

// HealthHandler 健康检查：纯状态汇总，无任何副作用。
type HealthHandler struct {
	store     assistant.Store
	backends  []provider.Backend
	retriever *knowledge.Retriever
}

func NewHealthHandler(store assistant.Store, backends []provider.Backend, retriever *knowledge.Retriever) *HealthHandler {
	return &HealthHandler{store: store, backends: backends, retriever: retriever}
}

// Health GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	backends := make(map[string]bool, len(h.backends))
	for _, b := range h.backends {
		backends[b.Name()] = b.Available()
	}

	indexLoaded := h.retriever != nil && h.retriever.IndexLoaded()

	storeName := "none"
	storeConnected := false
	if h.store != nil {
		storeName = h.store.Name()
		storeConnected = h.store.Connected(r.Context())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"backends":           backends,
		"rag_index_loaded":   indexLoaded,
		"store":              storeName,
		"database_connected": storeConnected,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}
