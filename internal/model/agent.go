package model

import (
	"time"

	"gorm.io/gorm"
)

// Agent lifecycle status values.
const (
	StatusWaitingForApproval = "Waiting for approval"

	DeploymentStatusDeployed = "Deployed"
	DeploymentStatusFailed   = "Failed"
)

// Agent represents one governed workload: a dedicated resource group, a
// budget, an ML workspace and a hosted model deployment.
type Agent struct {
	ID          uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:90;not null;uniqueIndex:uk_name;comment:derived resource group name"`
	DisplayName string `json:"display_name" gorm:"size:128"`
	Description string `json:"description" gorm:"size:512"`
	Owner       string `json:"owner" gorm:"size:128"`
	OwnerEmail  string `json:"owner_email" gorm:"size:128"`
	ModelBase   string `json:"model_base" gorm:"size:64"`
	Location    string `json:"location" gorm:"size:64"`

	// Active is accepted on creation and stored, but no transition reads it.
	Active bool    `json:"active"`
	Status string  `json:"status" gorm:"size:64"`
	Budget float64 `json:"budget"`

	// Populated step by step as provisioning progresses.
	Workspace        *string `json:"workspace" gorm:"size:512"`
	OpenAIEndpoint   *string `json:"openai_endpoint" gorm:"size:512"`
	OpenAIAPIKey     *string `json:"-" gorm:"size:512"`
	DeploymentName   *string `json:"deployment_name" gorm:"size:128"`
	DeploymentStatus *string `json:"deployment_status" gorm:"size:32"`

	CreatedAt int64 `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt int64 `json:"updated_at" gorm:"autoUpdateTime:milli"`
}

// TableName returns the table name for GORM.
func (a *Agent) TableName() string {
	return "agents"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (a *Agent) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	a.CreatedAt = now
	a.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (a *Agent) BeforeUpdate(_ *gorm.DB) (err error) {
	a.UpdatedAt = time.Now().UnixMilli()
	return
}

// Provisioned reports whether every credential the chat proxy needs is set.
func (a *Agent) Provisioned() bool {
	return strPtrSet(a.OpenAIEndpoint) && strPtrSet(a.OpenAIAPIKey) && strPtrSet(a.DeploymentName)
}

func strPtrSet(s *string) bool {
	return s != nil && *s != ""
}
