package biz

import (
	"context"
	"errors"

	"github.com/kart-io/logger"
	"github.com/openai/openai-go"
	azureopenai "github.com/openai/openai-go/azure"
	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/governor/store"
	"github.com/agentgov/governor/pkg/errno"
)

const (
	// chatPreamble is prepended to every conversation as the system turn.
	chatPreamble = "You are a helpful assistant."

	// azureAPIVersion pins the Azure OpenAI data-plane API version.
	azureAPIVersion = "2024-02-15-preview"
)

// ChatClient sends a single user turn to a hosted model deployment and
// returns the assistant reply. Implementations are expected to be
// stateless; credentials are passed per call.
type ChatClient interface {
	Complete(ctx context.Context, endpoint, apiKey, deployment, input string) (string, error)
}

// openAIChatClient talks to an Azure-hosted OpenAI deployment.
type openAIChatClient struct{}

// NewOpenAIChatClient returns the production ChatClient.
func NewOpenAIChatClient() ChatClient {
	return &openAIChatClient{}
}

func (c *openAIChatClient) Complete(ctx context.Context, endpoint, apiKey, deployment, input string) (string, error) {
	client := openai.NewClient(
		azureopenai.WithEndpoint(endpoint, azureAPIVersion),
		azureopenai.WithAPIKey(apiKey),
	)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(chatPreamble),
			openai.UserMessage(input),
		},
		// On Azure the model field names the deployment, not the family.
		Model: openai.ChatModel(deployment),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// ChatService proxies single-turn conversations to an agent's deployed
// model using the credentials captured at provisioning time.
type ChatService struct {
	store  store.Factory
	client ChatClient
}

// NewChatService creates a new ChatService.
func NewChatService(store store.Factory, client ChatClient) *ChatService {
	return &ChatService{store: store, client: client}
}

// Complete sends one user turn to the agent's deployment and returns the
// first assistant reply. Conversations are stateless; nothing is stored.
func (s *ChatService) Complete(ctx context.Context, agentID uint64, input string) (string, error) {
	agent, err := s.store.Agents().Get(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errno.ErrAgentNotFound
		}
		return "", errno.ErrDatabase.WithCause(err)
	}

	if !agent.Provisioned() {
		return "", errno.ErrCredentialsUnavailable
	}

	reply, err := s.client.Complete(ctx, *agent.OpenAIEndpoint, *agent.OpenAIAPIKey, *agent.DeploymentName, input)
	if err != nil {
		logger.Errorw("chat completion failed", "agent_id", agentID, "deployment", *agent.DeploymentName, "error", err)
		return "", errno.ErrInference.WithCause(err)
	}
	return reply, nil
}
