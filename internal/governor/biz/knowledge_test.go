package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgov/governor/pkg/errno"
)

func TestKnowledgeService_AttachAndFetch(t *testing.T) {
	ds := newTestStore(t)
	gw := newFakeGateway()
	agent := provisionedAgent(t, NewAgentService(ds, gw))
	svc := NewKnowledgeService(ds, gw)

	content := []byte("reference material")
	src, err := svc.Attach(context.Background(), agent.ID, "handbook", "handbook.pdf", content)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.False(t, src.Approved)

	wantURL := fmt.Sprintf("https://testacct.blob.core.windows.net/agent%d-blob/handbook.pdf", agent.ID)
	assert.Equal(t, wantURL, src.Source)

	data, fileName, err := svc.Fetch(context.Background(), agent.ID, src.ID)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "handbook.pdf", fileName)
}

func TestKnowledgeService_AttachAgentMissing(t *testing.T) {
	gw := newFakeGateway()
	svc := NewKnowledgeService(newTestStore(t), gw)

	_, err := svc.Attach(context.Background(), 42, "handbook", "handbook.pdf", []byte("x"))
	assert.ErrorIs(t, err, errno.ErrAgentNotFound)
	assert.Zero(t, gw.callCount())
}

func TestKnowledgeService_AttachNoStorageAccount(t *testing.T) {
	ds := newTestStore(t)
	gw := newFakeGateway()
	agent := provisionedAgent(t, NewAgentService(ds, gw))

	gw.noStorageAcct = true
	svc := NewKnowledgeService(ds, gw)

	_, err := svc.Attach(context.Background(), agent.ID, "handbook", "handbook.pdf", []byte("x"))
	assert.ErrorIs(t, err, errno.ErrStorageAccountNotFound)

	list, listErr := ds.Knowledge().ListByAgent(context.Background(), agent.ID)
	require.NoError(t, listErr)
	assert.Empty(t, list)
}

func TestKnowledgeService_SameBlobNameOverwrites(t *testing.T) {
	ds := newTestStore(t)
	gw := newFakeGateway()
	agent := provisionedAgent(t, NewAgentService(ds, gw))
	svc := NewKnowledgeService(ds, gw)

	first, err := svc.Attach(context.Background(), agent.ID, "v1", "notes.txt", []byte("old"))
	require.NoError(t, err)
	second, err := svc.Attach(context.Background(), agent.ID, "v2", "notes.txt", []byte("new"))
	require.NoError(t, err)

	// Same blob name, same URL: the second upload wins.
	assert.Equal(t, first.Source, second.Source)
	data, _, err := svc.Fetch(context.Background(), agent.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)

	// Two separate source rows remain linked.
	list, err := svc.List(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestKnowledgeService_FetchUnlinked(t *testing.T) {
	ds := newTestStore(t)
	gw := newFakeGateway()
	agentSvc := NewAgentService(ds, gw)
	first := provisionedAgent(t, agentSvc)

	req := alphaRequest()
	req.Name = "beta"
	second, _, err := agentSvc.Provision(context.Background(), req)
	require.NoError(t, err)

	svc := NewKnowledgeService(ds, gw)
	src, err := svc.Attach(context.Background(), first.ID, "handbook", "handbook.pdf", []byte("x"))
	require.NoError(t, err)

	_, _, err = svc.Fetch(context.Background(), second.ID, src.ID)
	assert.ErrorIs(t, err, errno.ErrKnowledgeNotFound)
}

func TestKnowledgeService_ListMissingAgent(t *testing.T) {
	svc := NewKnowledgeService(newTestStore(t), newFakeGateway())

	_, err := svc.List(context.Background(), 42)
	assert.ErrorIs(t, err, errno.ErrAgentNotFound)
}
