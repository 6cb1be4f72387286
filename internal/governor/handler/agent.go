// Package handler exposes the governance service over HTTP.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentgov/governor/internal/governor/biz"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/internal/pkg/httputils"
	"github.com/agentgov/governor/pkg/errno"
)

// AgentHandler handles agent lifecycle HTTP requests.
type AgentHandler struct {
	svc *biz.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(svc *biz.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

// NewAgentRequest is the request body for creating an agent. Status is
// accepted for forward compatibility but the lifecycle always starts at
// "Waiting for approval".
type NewAgentRequest struct {
	Name        string  `json:"name" binding:"required,agentname"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description"`
	Owner       string  `json:"owner"`
	OwnerEmail  string  `json:"owner_email" binding:"required,email"`
	ModelBase   string  `json:"model_base"`
	Location    string  `json:"location" binding:"required"`
	Active      bool    `json:"active"`
	Status      string  `json:"status"`
	Budget      float64 `json:"budget" binding:"required,gt=0"`
}

// AgentDetailResponse is the body for a single-agent read, combining the
// stored record with the live budget figures.
type AgentDetailResponse struct {
	Message      string       `json:"message"`
	Agent        *model.Agent `json:"agent"`
	Budget       float64      `json:"budget"`
	CurrentSpend float64      `json:"current_spend"`
}

// Create provisions a new agent end to end. The connection stays open
// for the whole run.
func (h *AgentHandler) Create(c *gin.Context) {
	var req NewAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	_, msg, err := h.svc.Provision(c.Request.Context(), &biz.ProvisionRequest{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Owner:       req.Owner,
		OwnerEmail:  req.OwnerEmail,
		ModelBase:   req.ModelBase,
		Location:    req.Location,
		Active:      req.Active,
		Budget:      req.Budget,
	})
	if err != nil {
		// A taken name answers with a message body rather than a raised
		// error, matching the established wire contract.
		if errors.Is(err, errno.ErrAgentExists) {
			c.JSON(http.StatusNotFound, httputils.MessageResponse{Message: errno.ErrAgentExists.Message})
			return
		}
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, httputils.MessageResponse{Message: msg})
}

// List returns all agents as a bare array.
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.svc.List(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, agents)
}

// Get returns one agent with its budget limit and current spend.
func (h *AgentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "agent_id")
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	agent, budget, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, AgentDetailResponse{
		Message:      "Success",
		Agent:        agent,
		Budget:       budget.Limit,
		CurrentSpend: budget.CurrentSpend,
	})
}

// Delete removes an agent. Not-found still answers 200, only the message
// text differs.
func (h *AgentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		httputils.WriteResponse(c, errno.ErrBadRequest.WithMessage("id must be a positive integer"), nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, errno.ErrAgentNotFound) {
			httputils.WriteResponse(c, nil, httputils.MessageResponse{Message: "Error - item not found."})
			return
		}
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, httputils.MessageResponse{
		Message: fmt.Sprintf("Record with ID %d has been deleted.", id),
	})
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errno.ErrBadRequest.WithMessagef("%s must be a positive integer", name)
	}
	return id, nil
}
