// Package store implements the persistent repository for agents and
// their knowledge sources over GORM.
package store

import (
	"context"

	"github.com/agentgov/governor/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Agents() AgentStore
	Knowledge() KnowledgeStore

	// TX runs fn inside one database transaction. The Factory handed to
	// fn operates on the transaction; a returned error rolls everything
	// back. Provisioning uses this so a failed run commits either the
	// terminal row state or nothing at all.
	TX(ctx context.Context, fn func(Factory) error) error

	Close() error
}

// AgentStore defines the agent storage interface.
type AgentStore interface {
	Create(ctx context.Context, agent *model.Agent) error
	Update(ctx context.Context, agent *model.Agent) error
	Delete(ctx context.Context, id uint64) error
	Get(ctx context.Context, id uint64) (*model.Agent, error)
	GetByName(ctx context.Context, name string) (*model.Agent, error)
	List(ctx context.Context) ([]*model.Agent, error)
}

// KnowledgeStore defines the knowledge-source storage interface.
type KnowledgeStore interface {
	CreateSource(ctx context.Context, src *model.KnowledgeSource) error
	GetForAgent(ctx context.Context, agentID, knowledgeID uint64) (*model.KnowledgeSource, error)
	ListByAgent(ctx context.Context, agentID uint64) ([]*model.KnowledgeSource, error)

	CreateLink(ctx context.Context, link *model.AgentKnowledgeSource) error
	LinkExists(ctx context.Context, agentID, knowledgeID uint64) (bool, error)

	// DeleteByAgent removes every link row for the agent and each linked
	// KnowledgeSource row left without any other referencing link.
	DeleteByAgent(ctx context.Context, agentID uint64) error
}
