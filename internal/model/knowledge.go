package model

import (
	"time"

	"gorm.io/gorm"
)

// KnowledgeSource represents one uploaded reference document stored in the
// owning agent's blob container.
type KnowledgeSource struct {
	ID   uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:128;index:idx_name"`

	// Source is the blob URL and the sole locator for the stored object.
	Source string `json:"source" gorm:"size:1024"`

	// Approved is reserved for a moderation workflow; nothing sets it true.
	Approved bool `json:"approved"`

	CreatedAt int64 `json:"created_at" gorm:"autoCreateTime:milli"`
}

// TableName returns the table name for GORM.
func (k *KnowledgeSource) TableName() string {
	return "knowledge_sources"
}

// BeforeCreate sets the CreatedAt field.
func (k *KnowledgeSource) BeforeCreate(_ *gorm.DB) (err error) {
	k.CreatedAt = time.Now().UnixMilli()
	return
}

// AgentKnowledgeSource links agents to knowledge sources. The composite
// unique index keeps a given (agent, knowledge) pair from appearing twice
// even under concurrent uploads.
type AgentKnowledgeSource struct {
	ID          uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	AgentID     uint64 `json:"agent_id" gorm:"uniqueIndex:uk_agent_knowledge;index:idx_agent_id;not null"`
	KnowledgeID uint64 `json:"knowledge_id" gorm:"uniqueIndex:uk_agent_knowledge;index:idx_knowledge_id;not null"`
	CreatedAt   int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// TableName returns the table name for GORM.
func (l *AgentKnowledgeSource) TableName() string {
	return "agent_knowledge_sources"
}

// BeforeCreate sets the CreatedAt field.
func (l *AgentKnowledgeSource) BeforeCreate(_ *gorm.DB) (err error) {
	l.CreatedAt = time.Now().UnixMilli()
	return
}
