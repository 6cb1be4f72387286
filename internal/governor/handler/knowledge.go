package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentgov/governor/internal/governor/biz"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/internal/pkg/httputils"
	"github.com/agentgov/governor/pkg/errno"
)

// KnowledgeHandler handles knowledge-source HTTP requests.
type KnowledgeHandler struct {
	svc *biz.KnowledgeService
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(svc *biz.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

// KnowledgeListResponse is the body for listing an agent's sources.
type KnowledgeListResponse struct {
	Message          string                   `json:"message"`
	KnowledgeSources []*model.KnowledgeSource `json:"knowledge_sources"`
}

// Attach accepts a multipart upload and links it to the agent.
func (h *KnowledgeHandler) Attach(c *gin.Context) {
	agentID, err := pathID(c, "agent_id")
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	name := c.PostForm("knowledge_source_name")
	if name == "" {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithMessage("knowledge_source_name is required"), nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithMessage("file is required"), nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithCause(err), nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithCause(err), nil)
		return
	}

	src, err := h.svc.Attach(c.Request.Context(), agentID, name, fh.Filename, data)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, httputils.MessageResponse{
		Message: fmt.Sprintf("Knowledge source %s added to agent %d.", src.Name, agentID),
	})
}

// Fetch streams a knowledge source's file back as an attachment.
func (h *KnowledgeHandler) Fetch(c *gin.Context) {
	agentID, err := pathID(c, "agent_id")
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	knowledgeID, err := pathID(c, "knowledge_source_id")
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	data, fileName, err := h.svc.Fetch(c.Request.Context(), agentID, knowledgeID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// List returns every knowledge source linked to the agent.
func (h *KnowledgeHandler) List(c *gin.Context) {
	agentID, err := pathID(c, "agent_id")
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.svc.List(c.Request.Context(), agentID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, KnowledgeListResponse{
		Message:          "Success",
		KnowledgeSources: list,
	})
}
