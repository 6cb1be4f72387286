package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agentgov/governor/internal/governor/biz"
	"github.com/agentgov/governor/internal/pkg/httputils"
	"github.com/agentgov/governor/pkg/errno"
)

// ChatHandler proxies chat completions to an agent's deployment.
type ChatHandler struct {
	svc *biz.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *biz.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ChatCompletionRequest is the request body for a single chat turn.
type ChatCompletionRequest struct {
	AgentID   uint64 `json:"agent_id" binding:"required"`
	UserInput string `json:"user_input" binding:"required"`
}

// ChatCompletionResponse carries the assistant's reply.
type ChatCompletionResponse struct {
	AssistantReply string `json:"assistant_reply"`
}

// Complete forwards one prompt to the agent's deployment.
func (h *ChatHandler) Complete(c *gin.Context) {
	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	reply, err := h.svc.Complete(c.Request.Context(), req.AgentID, req.UserInput)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, ChatCompletionResponse{AssistantReply: reply})
}
