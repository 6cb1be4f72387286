package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/pkg/errno"
)

func provisionedAgent(t *testing.T, svc *AgentService) *model.Agent {
	t.Helper()
	agent, _, err := svc.Provision(context.Background(), alphaRequest())
	require.NoError(t, err)
	return agent
}

func TestChatService_Success(t *testing.T) {
	ds := newTestStore(t)
	agent := provisionedAgent(t, NewAgentService(ds, newFakeGateway()))

	client := &fakeChatClient{reply: "Hello there."}
	svc := NewChatService(ds, client)

	reply, err := svc.Complete(context.Background(), agent.ID, "Say hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, *agent.OpenAIEndpoint, client.endpoint)
	assert.Equal(t, *agent.OpenAIAPIKey, client.apiKey)
	assert.Equal(t, *agent.DeploymentName, client.deployment)
	assert.Equal(t, "Say hi", client.input)
}

func TestChatService_AgentMissing(t *testing.T) {
	client := &fakeChatClient{reply: "unused"}
	svc := NewChatService(newTestStore(t), client)

	_, err := svc.Complete(context.Background(), 42, "hello")
	assert.ErrorIs(t, err, errno.ErrAgentNotFound)
	assert.Zero(t, client.calls)
}

func TestChatService_CredentialsUnavailable(t *testing.T) {
	ds := newTestStore(t)

	// A row that never finished provisioning has no endpoint or key.
	agent := &model.Agent{
		Name:       "agent-bare-rg",
		OwnerEmail: "owner@example.com",
		Location:   "eastus",
		Status:     model.StatusWaitingForApproval,
	}
	require.NoError(t, ds.Agents().Create(context.Background(), agent))

	client := &fakeChatClient{reply: "unused"}
	svc := NewChatService(ds, client)

	_, err := svc.Complete(context.Background(), agent.ID, "hello")
	assert.ErrorIs(t, err, errno.ErrCredentialsUnavailable)

	// No remote call is issued without credentials.
	assert.Zero(t, client.calls)
}

func TestChatService_InferenceError(t *testing.T) {
	ds := newTestStore(t)
	agent := provisionedAgent(t, NewAgentService(ds, newFakeGateway()))

	client := &fakeChatClient{err: assert.AnError}
	svc := NewChatService(ds, client)

	_, err := svc.Complete(context.Background(), agent.ID, "hello")
	assert.ErrorIs(t, err, errno.ErrInference)
}
