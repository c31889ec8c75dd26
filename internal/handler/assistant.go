package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/personalai/assistant/internal/agent"
	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/security"
)

// Runner runs one action through the query pipeline.
type Runner interface {
	Run(ctx context.Context, action agent.Action) *agent.Envelope
}

// AssistantHandler handles POST /generate-message/
type AssistantHandler struct {
	pipeline  Runner
	promptVal *security.PromptValidator
}

func NewAssistantHandler(pipeline Runner, promptVal *security.PromptValidator) *AssistantHandler {
	return &AssistantHandler{pipeline: pipeline, promptVal: promptVal}
}

// GenerateMessage answers with exactly one of appointments, intent or
// user_friendly_message depending on the classified intent.
func (h *AssistantHandler) GenerateMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if res := h.promptVal.Validate(req.Action); !res.Valid {
		models.WriteError(w, http.StatusBadRequest, "action validation failed: "+res.Message)
		return
	}

	env := h.pipeline.Run(r.Context(), agent.Action{
		Text:       req.Action,
		Parameters: req.Parameters,
		Caller:     r.Header.Get("X-API-Key"),
	})

	if env.Err != nil {
		models.WriteJSON(w, statusFor(env.Err), models.AssistantResponse{Error: env.Error})
		return
	}

	switch env.Intent {
	case agent.IntentViewing:
		models.WriteJSON(w, http.StatusOK, models.AssistantResponse{Appointments: env.Appointments})
	case agent.IntentBooking:
		models.WriteJSON(w, http.StatusOK, models.AssistantResponse{Intent: string(agent.IntentBooking)})
	default:
		models.WriteJSON(w, http.StatusOK, models.AssistantResponse{UserFriendlyMessage: env.UserMessage})
	}
}

// statusFor maps a pipeline error onto an HTTP status: a rejected query is
// the caller's problem, everything else is ours.
func statusFor(err error) int {
	if errors.Is(err, agent.ErrForbiddenOperation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
