package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/personalai/assistant/internal/agent"
	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/security"
)

// NLQueryHandler exposes the full pipeline envelope.
type NLQueryHandler struct {
	pipeline  Runner
	promptVal *security.PromptValidator
}

func NewNLQueryHandler(pipeline Runner, promptVal *security.PromptValidator) *NLQueryHandler {
	return &NLQueryHandler{pipeline: pipeline, promptVal: promptVal}
}

// Process handles POST /api/nl-query/process. Pipeline failures are reported
// inside the envelope with status 200; only malformed requests get a 4xx.
func (h *NLQueryHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.NLQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Query = strings.TrimSpace(req.Query)

	if res := h.promptVal.Validate(req.Query); !res.Valid {
		models.WriteError(w, http.StatusBadRequest, "query validation failed: "+res.Message)
		return
	}

	env := h.pipeline.Run(r.Context(), agent.Action{
		Text:   req.Query,
		Caller: r.Header.Get("X-API-Key"),
	})
	models.WriteJSON(w, http.StatusOK, env)
}
