package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/model"
)

type knowledge struct {
	db *gorm.DB
}

func newKnowledge(db *gorm.DB) *knowledge {
	return &knowledge{db}
}

// CreateSource inserts a new knowledge-source row.
func (k *knowledge) CreateSource(ctx context.Context, src *model.KnowledgeSource) error {
	return k.db.WithContext(ctx).Create(src).Error
}

// GetForAgent retrieves a knowledge source only if it is linked to the
// given agent.
func (k *knowledge) GetForAgent(ctx context.Context, agentID, knowledgeID uint64) (*model.KnowledgeSource, error) {
	var src model.KnowledgeSource
	err := k.db.WithContext(ctx).
		Joins("JOIN agent_knowledge_sources l ON l.knowledge_id = knowledge_sources.id").
		Where("l.agent_id = ? AND knowledge_sources.id = ?", agentID, knowledgeID).
		First(&src).Error
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// ListByAgent returns every knowledge source reachable through the link
// table. The inner join silently drops links whose source row is gone.
func (k *knowledge) ListByAgent(ctx context.Context, agentID uint64) ([]*model.KnowledgeSource, error) {
	var list []*model.KnowledgeSource
	err := k.db.WithContext(ctx).
		Joins("JOIN agent_knowledge_sources l ON l.knowledge_id = knowledge_sources.id").
		Where("l.agent_id = ?", agentID).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CreateLink inserts an agent/knowledge link row. The composite unique
// index turns a concurrent duplicate into gorm.ErrDuplicatedKey.
func (k *knowledge) CreateLink(ctx context.Context, link *model.AgentKnowledgeSource) error {
	return k.db.WithContext(ctx).Create(link).Error
}

// LinkExists reports whether a link row already exists for the pair.
func (k *knowledge) LinkExists(ctx context.Context, agentID, knowledgeID uint64) (bool, error) {
	var count int64
	err := k.db.WithContext(ctx).
		Model(&model.AgentKnowledgeSource{}).
		Where("agent_id = ? AND knowledge_id = ?", agentID, knowledgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByAgent removes the agent's link rows and every linked knowledge
// source that no other agent still references.
func (k *knowledge) DeleteByAgent(ctx context.Context, agentID uint64) error {
	var links []*model.AgentKnowledgeSource
	if err := k.db.WithContext(ctx).Where("agent_id = ?", agentID).Find(&links).Error; err != nil {
		return err
	}

	for _, link := range links {
		var others int64
		err := k.db.WithContext(ctx).
			Model(&model.AgentKnowledgeSource{}).
			Where("knowledge_id = ? AND agent_id <> ?", link.KnowledgeID, agentID).
			Count(&others).Error
		if err != nil {
			return err
		}
		if others == 0 {
			if err := k.db.WithContext(ctx).Where("id = ?", link.KnowledgeID).Delete(&model.KnowledgeSource{}).Error; err != nil {
				return err
			}
		}
	}

	return k.db.WithContext(ctx).Where("agent_id = ?", agentID).Delete(&model.AgentKnowledgeSource{}).Error
}
