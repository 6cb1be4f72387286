// Package biz holds the business logic of the governance service: the
// provisioning orchestrator, the chat proxy and the knowledge attachment
// flow.
package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/governor/store"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/pkg/component/azure"
	"github.com/agentgov/governor/pkg/errno"
)

// defaultModelName is deployed when the request names no model family.
const defaultModelName = "gpt-35-turbo"

// ProvisionRequest carries everything needed to stand up one agent.
type ProvisionRequest struct {
	Name        string
	DisplayName string
	Description string
	Owner       string
	OwnerEmail  string
	ModelBase   string
	Location    string
	Active      bool
	Budget      float64
}

// ContainerName derives the cloud container name from the logical agent
// name. Once assigned the name is never changed.
func (r *ProvisionRequest) ContainerName() string {
	return fmt.Sprintf("agent-%s-rg", r.Name)
}

// AgentService drives the agent lifecycle: the ordered provisioning
// sequence, reads, and deprovisioning.
type AgentService struct {
	store store.Factory
	gw    azure.Gateway
}

// NewAgentService creates a new AgentService.
func NewAgentService(store store.Factory, gw azure.Gateway) *AgentService {
	return &AgentService{store: store, gw: gw}
}

// Provision runs the full provisioning sequence for a new agent:
//
//	container -> row insert -> budget -> workspace -> model host -> deployment
//
// The row is inserted inside one transaction that stays open for the whole
// run, so a crash leaves no partial row. A step failure after container
// creation marks the row's deployment status "Failed", commits it and
// propagates the failure; cloud resources already created are not cleaned
// up and no step is retried.
func (s *AgentService) Provision(ctx context.Context, req *ProvisionRequest) (*model.Agent, string, error) {
	rgName := req.ContainerName()

	// Duplicate-name check: nothing is created when the derived name is
	// already taken.
	if _, err := s.store.Agents().GetByName(ctx, rgName); err == nil {
		return nil, "", errno.ErrAgentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errno.ErrDatabase.WithCause(err)
	}

	if err := s.gw.CreateContainer(ctx, rgName, req.Location); err != nil {
		return nil, "", err
	}
	logger.Infow("provisioned agent container", "container", rgName, "location", req.Location)

	var (
		agent      *model.Agent
		deployment string
		stepErr    error
	)

	err := s.store.TX(ctx, func(tx store.Factory) error {
		agent = &model.Agent{
			Name:        rgName,
			DisplayName: req.DisplayName,
			Description: req.Description,
			Owner:       req.Owner,
			OwnerEmail:  req.OwnerEmail,
			ModelBase:   req.ModelBase,
			Location:    req.Location,
			Active:      req.Active,
			Status:      model.StatusWaitingForApproval,
			Budget:      req.Budget,
		}
		if err := tx.Agents().Create(ctx, agent); err != nil {
			// A concurrent create can win the name between the duplicate
			// check and this insert; the unique index reports it here.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errno.ErrAgentExists
			}
			return errno.ErrDatabase.WithCause(err)
		}

		if err := s.gw.CreateBudget(ctx, rgName, req.OwnerEmail, req.Budget); err != nil {
			return s.markFailed(ctx, tx, agent, err, &stepErr)
		}
		logger.Infow("budget created", "container", rgName, "amount", req.Budget)

		wsName := fmt.Sprintf("project-agent%d", agent.ID)
		endpoint, err := s.gw.CreateWorkspace(ctx, rgName, wsName, req.DisplayName, req.Description)
		if err != nil {
			return s.markFailed(ctx, tx, agent, err, &stepErr)
		}
		agent.Workspace = &endpoint
		logger.Infow("workspace created", "container", rgName, "workspace", wsName)

		hostName := fmt.Sprintf("agent%dopenai", agent.ID)
		host, err := s.gw.CreateModelHost(ctx, rgName, hostName, req.Location)
		if err != nil {
			return s.markFailed(ctx, tx, agent, err, &stepErr)
		}
		agent.OpenAIEndpoint = &host.Endpoint
		agent.OpenAIAPIKey = &host.Key
		logger.Infow("model host created", "container", rgName, "host", hostName)

		deployment = fmt.Sprintf("gpt-3-deployment-agent%d", agent.ID)
		modelName := req.ModelBase
		if modelName == "" {
			modelName = defaultModelName
		}
		if err := s.gw.DeployModel(ctx, rgName, hostName, deployment, modelName, ""); err != nil {
			return s.markFailed(ctx, tx, agent, err, &stepErr)
		}

		deployed := model.DeploymentStatusDeployed
		agent.DeploymentName = &deployment
		agent.DeploymentStatus = &deployed
		if err := tx.Agents().Update(ctx, agent); err != nil {
			return errno.ErrDatabase.WithCause(err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if stepErr != nil {
		return agent, "", stepErr
	}

	msg := fmt.Sprintf("Provisioned resource group %s and deployed OpenAI model %s.", rgName, deployment)
	logger.Infow("agent provisioned", "container", rgName, "deployment", deployment)
	return agent, msg, nil
}

// markFailed records the terminal failure on the agent row and commits
// it. The step error is stashed for the caller; returning nil here lets
// the surrounding transaction commit the Failed row.
func (s *AgentService) markFailed(ctx context.Context, tx store.Factory, agent *model.Agent, cause error, stepErr *error) error {
	failed := model.DeploymentStatusFailed
	agent.DeploymentStatus = &failed
	if err := tx.Agents().Update(ctx, agent); err != nil {
		return errno.ErrDatabase.WithCause(err)
	}
	*stepErr = cause
	return nil
}

// Get returns the agent row together with its live budget status.
func (s *AgentService) Get(ctx context.Context, id uint64) (*model.Agent, azure.BudgetStatus, error) {
	agent, err := s.store.Agents().Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, azure.BudgetStatus{}, errno.ErrAgentNotFound
		}
		return nil, azure.BudgetStatus{}, errno.ErrDatabase.WithCause(err)
	}

	status, err := s.gw.BudgetStatus(ctx, agent.Name)
	if err != nil {
		return nil, azure.BudgetStatus{}, err
	}
	return agent, status, nil
}

// List returns all agents.
func (s *AgentService) List(ctx context.Context) ([]*model.Agent, error) {
	agents, err := s.store.Agents().List(ctx)
	if err != nil {
		return nil, errno.ErrDatabase.WithCause(err)
	}
	return agents, nil
}

// Delete tears an agent down. The cloud container deletion is best-effort
// (a failure is logged and swallowed); the local rows are then removed
// unconditionally, links and orphaned knowledge sources included.
func (s *AgentService) Delete(ctx context.Context, id uint64) error {
	agent, err := s.store.Agents().Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errno.ErrAgentNotFound
		}
		return errno.ErrDatabase.WithCause(err)
	}

	if err := s.gw.DeleteContainer(ctx, agent.Name); err != nil {
		logger.Warnw("failed to delete agent container, local records removed anyway",
			"container", agent.Name, "error", err)
	}

	err = s.store.TX(ctx, func(tx store.Factory) error {
		if err := tx.Knowledge().DeleteByAgent(ctx, id); err != nil {
			return err
		}
		return tx.Agents().Delete(ctx, id)
	})
	if err != nil {
		return errno.ErrDatabase.WithCause(err)
	}

	logger.Infow("agent deleted", "id", id, "container", agent.Name)
	return nil
}
