package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"krishisahay/internal/domain/assistant"
	applog "krishisahay/internal/platform/log"
)

// FeedbackRequest 回答反馈请求
type FeedbackRequest struct {
	Query    string `json:"query"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"` // positive | negative
}

// AppFeedbackRequest 应用反馈请求
type AppFeedbackRequest struct {
	Message string `json:"message"`
	Rating  *int   `json:"rating,omitempty"`
	Page    string `json:"page,omitempty"`
}

// FeedbackHandler 反馈处理器
type FeedbackHandler struct {
	store assistant.Store
}

func NewFeedbackHandler(store assistant.Store) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// SubmitFeedback POST /feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.Answer) == "" {
		writeError(w, http.StatusBadRequest, "Query and answer cannot be empty")
		return
	}
	if req.Feedback != "positive" && req.Feedback != "negative" {
		writeError(w, http.StatusBadRequest, "Feedback must be 'positive' or 'negative'")
		return
	}

	err := h.store.SaveFeedback(r.Context(), &assistant.FeedbackRecord{
		Query:    req.Query,
		Answer:   req.Answer,
		Feedback: req.Feedback,
	})
	if err != nil {
		applog.Error("[Feedback] Save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Feedback recorded",
	})
}

// SubmitAppFeedback POST /app-feedback
// 校验先于持久化：无效请求不会触达存储。
func (h *FeedbackHandler) SubmitAppFeedback(w http.ResponseWriter, r *http.Request) {
	var req AppFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	err := h.store.SaveAppFeedback(r.Context(), &assistant.AppFeedbackRecord{
		Message: message,
		Rating:  req.Rating,
		Page:    strings.TrimSpace(req.Page),
	})
	if err != nil {
		applog.Error("[Feedback] Save app feedback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record app feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "App feedback recorded",
	})
}

// RecentAppFeedback GET /app-feedback?limit=20
func (h *FeedbackHandler) RecentAppFeedback(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	items, err := h.store.RecentAppFeedback(r.Context(), limit)
	if err != nil {
		applog.Error("[Feedback] List app feedback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch app feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}
