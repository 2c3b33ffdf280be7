package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/domain/language"
)

// AskRequest 提问请求
type AskRequest struct {
	Query    string   `json:"query"`
	Language string   `json:"language"` // 语言码 | mixed | auto，缺省 en
	Region   string   `json:"region,omitempty"`
	Season   string   `json:"season,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// AskResponse 提问响应
type AskResponse struct {
	Answer   string `json:"answer"`
	Source   string `json:"source"`
	Category string `json:"category,omitempty"`
}

// AskHandler 提问处理器
type AskHandler struct {
	orchestrator *assistant.Orchestrator
}

func NewAskHandler(orch *assistant.Orchestrator) *AskHandler {
	return &AskHandler{orchestrator: orch}
}

// Ask POST /ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}

	lang := language.Code(req.Language)
	if req.Language == "" {
		lang = language.English
	}

	result := h.orchestrator.Ask(r.Context(), &assistant.Query{
		Text:     req.Query,
		Language: lang,
		Region:   req.Region,
		Season:   req.Season,
		Lat:      req.Lat,
		Lon:      req.Lon,
	})

	writeJSON(w, http.StatusOK, &AskResponse{
		Answer:   result.Answer,
		Source:   result.Source,
		Category: result.Category,
	})
}
