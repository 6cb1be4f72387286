package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/model"
)

func newTestFactory(t *testing.T) Factory {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Agent{}, &model.KnowledgeSource{}, &model.AgentKnowledgeSource{}))
	return New(db)
}

func newAgent(name string) *model.Agent {
	return &model.Agent{
		Name:       name,
		Owner:      "owner",
		OwnerEmail: "owner@example.com",
		Location:   "eastus",
		Status:     model.StatusWaitingForApproval,
		Budget:     100,
	}
}

func TestAgentStore_CRUD(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	agent := newAgent("agent-alpha-rg")
	require.NoError(t, ds.Agents().Create(ctx, agent))
	assert.NotZero(t, agent.ID)

	got, err := ds.Agents().Get(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "agent-alpha-rg", got.Name)
	assert.Equal(t, model.StatusWaitingForApproval, got.Status)

	byName, err := ds.Agents().GetByName(ctx, "agent-alpha-rg")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, byName.ID)

	endpoint := "https://eastus.api.azureml.ms/discovery"
	got.Workspace = &endpoint
	deployed := model.DeploymentStatusDeployed
	got.DeploymentStatus = &deployed
	require.NoError(t, ds.Agents().Update(ctx, got))

	updated, err := ds.Agents().Get(ctx, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Workspace)
	assert.Equal(t, endpoint, *updated.Workspace)
	require.NotNil(t, updated.DeploymentStatus)
	assert.Equal(t, model.DeploymentStatusDeployed, *updated.DeploymentStatus)

	list, err := ds.Agents().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, ds.Agents().Delete(ctx, agent.ID))
	_, err = ds.Agents().Get(ctx, agent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAgentStore_GetMissing(t *testing.T) {
	ds := newTestFactory(t)

	_, err := ds.Agents().Get(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = ds.Agents().GetByName(context.Background(), "agent-missing-rg")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAgentStore_NameUnique(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	require.NoError(t, ds.Agents().Create(ctx, newAgent("agent-dup-rg")))
	err := ds.Agents().Create(ctx, newAgent("agent-dup-rg"))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestKnowledgeStore_LinkLifecycle(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	agent := newAgent("agent-alpha-rg")
	require.NoError(t, ds.Agents().Create(ctx, agent))

	src := &model.KnowledgeSource{Name: "handbook", Source: "https://acct.blob.core.windows.net/agent1-blob/handbook.pdf"}
	require.NoError(t, ds.Knowledge().CreateSource(ctx, src))
	assert.NotZero(t, src.ID)

	exists, err := ds.Knowledge().LinkExists(ctx, agent.ID, src.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: agent.ID, KnowledgeID: src.ID}))

	exists, err = ds.Knowledge().LinkExists(ctx, agent.ID, src.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// The composite unique index rejects a second identical link.
	err = ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: agent.ID, KnowledgeID: src.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestKnowledgeStore_GetForAgent(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	linked := newAgent("agent-alpha-rg")
	other := newAgent("agent-beta-rg")
	require.NoError(t, ds.Agents().Create(ctx, linked))
	require.NoError(t, ds.Agents().Create(ctx, other))

	src := &model.KnowledgeSource{Name: "handbook", Source: "https://acct.blob.core.windows.net/agent1-blob/handbook.pdf"}
	require.NoError(t, ds.Knowledge().CreateSource(ctx, src))
	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: linked.ID, KnowledgeID: src.ID}))

	got, err := ds.Knowledge().GetForAgent(ctx, linked.ID, src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.Source, got.Source)

	// The same source is invisible through an agent it is not linked to.
	_, err = ds.Knowledge().GetForAgent(ctx, other.ID, src.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestKnowledgeStore_ListByAgentSkipsDanglingLinks(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	agent := newAgent("agent-alpha-rg")
	require.NoError(t, ds.Agents().Create(ctx, agent))

	kept := &model.KnowledgeSource{Name: "kept", Source: "https://acct.blob.core.windows.net/agent1-blob/kept.txt"}
	gone := &model.KnowledgeSource{Name: "gone", Source: "https://acct.blob.core.windows.net/agent1-blob/gone.txt"}
	require.NoError(t, ds.Knowledge().CreateSource(ctx, kept))
	require.NoError(t, ds.Knowledge().CreateSource(ctx, gone))
	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: agent.ID, KnowledgeID: kept.ID}))
	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: agent.ID, KnowledgeID: gone.ID}))

	// Remove one source row behind the link's back.
	db := ds.(*datastore).db
	require.NoError(t, db.Where("id = ?", gone.ID).Delete(&model.KnowledgeSource{}).Error)

	list, err := ds.Knowledge().ListByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Name)
}

func TestKnowledgeStore_DeleteByAgent(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	a := newAgent("agent-a-rg")
	b := newAgent("agent-b-rg")
	require.NoError(t, ds.Agents().Create(ctx, a))
	require.NoError(t, ds.Agents().Create(ctx, b))

	shared := &model.KnowledgeSource{Name: "shared", Source: "https://acct.blob.core.windows.net/agent1-blob/shared.txt"}
	sole := &model.KnowledgeSource{Name: "sole", Source: "https://acct.blob.core.windows.net/agent1-blob/sole.txt"}
	require.NoError(t, ds.Knowledge().CreateSource(ctx, shared))
	require.NoError(t, ds.Knowledge().CreateSource(ctx, sole))

	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: a.ID, KnowledgeID: shared.ID}))
	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: b.ID, KnowledgeID: shared.ID}))
	require.NoError(t, ds.Knowledge().CreateLink(ctx, &model.AgentKnowledgeSource{AgentID: a.ID, KnowledgeID: sole.ID}))

	require.NoError(t, ds.Knowledge().DeleteByAgent(ctx, a.ID))

	// No link rows are left for the deleted agent.
	exists, err := ds.Knowledge().LinkExists(ctx, a.ID, shared.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = ds.Knowledge().LinkExists(ctx, a.ID, sole.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// The shared source survives through agent b, the sole one is gone.
	got, err := ds.Knowledge().GetForAgent(ctx, b.ID, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, "shared", got.Name)

	db := ds.(*datastore).db
	var count int64
	require.NoError(t, db.Model(&model.KnowledgeSource{}).Where("id = ?", sole.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_TXRollback(t *testing.T) {
	ds := newTestFactory(t)
	ctx := context.Background()

	wantErr := assert.AnError
	err := ds.TX(ctx, func(tx Factory) error {
		if err := tx.Agents().Create(ctx, newAgent("agent-rollback-rg")); err != nil {
			return err
		}
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	_, err = ds.Agents().GetByName(ctx, "agent-rollback-rg")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
