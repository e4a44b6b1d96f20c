package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/assistant"
)

// AssistantHandler serves the owner chat endpoint. Conversation state is
// whatever history the client sends back; the server holds none.
type AssistantHandler struct {
	Client  *assistant.Client
	Context *assistant.ContextBuilder
}

func NewAssistantHandler(cl *assistant.Client, cb *assistant.ContextBuilder) *AssistantHandler {
	return &AssistantHandler{Client: cl, Context: cb}
}

type chatReq struct {
	Message        string           `json:"message"`
	History        []assistant.Turn `json:"history"`
	ConversationID string           `json:"conversation_id"`
}

type chatResp struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// Chat answers an owner question, grounding the model on the owner's
// business data when the question matches a known topic.
func (h *AssistantHandler) Chat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req chatReq
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return failJSON(c, http.StatusBadRequest, "message required")
	}
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	dbCtx, dbCancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer dbCancel()

	businessData, err := h.Context.Build(dbCtx, uid, req.Message)
	if err != nil {
		// Without business data even a working model would answer blind.
		return okJSON(c, http.StatusOK, "assistant reply", chatResp{
			ConversationID: convID,
			Reply:          assistant.DegradedReply(),
		})
	}

	session := assistant.NewSession(req.History, businessData, req.Message)

	llmCtx, llmCancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer llmCancel()

	reply, err := h.Client.Complete(llmCtx, session)
	if err != nil {
		reply = assistant.FallbackReply(req.Message)
	}
	return okJSON(c, http.StatusOK, "assistant reply", chatResp{
		ConversationID: convID,
		Reply:          reply,
	})
}
