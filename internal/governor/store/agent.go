package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/model"
)

type agents struct {
	db *gorm.DB
}

func newAgents(db *gorm.DB) *agents {
	return &agents{db}
}

// Create inserts a new agent row.
func (a *agents) Create(ctx context.Context, agent *model.Agent) error {
	return a.db.WithContext(ctx).Create(agent).Error
}

// Update persists all fields of an existing agent.
func (a *agents) Update(ctx context.Context, agent *model.Agent) error {
	return a.db.WithContext(ctx).Save(agent).Error
}

// Delete removes an agent row by id.
func (a *agents) Delete(ctx context.Context, id uint64) error {
	return a.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Agent{}).Error
}

// Get retrieves an agent by id.
func (a *agents) Get(ctx context.Context, id uint64) (*model.Agent, error) {
	var agent model.Agent
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetByName retrieves an agent by its derived resource-group name. The
// match is exact and case-sensitive.
func (a *agents) GetByName(ctx context.Context, name string) (*model.Agent, error) {
	var agent model.Agent
	if err := a.db.WithContext(ctx).Where("name = ?", name).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns all agents.
func (a *agents) List(ctx context.Context) ([]*model.Agent, error) {
	var list []*model.Agent
	if err := a.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
