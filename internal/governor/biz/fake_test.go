package biz

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agentgov/governor/internal/governor/store"
	"github.com/agentgov/governor/internal/model"
	"github.com/agentgov/governor/pkg/component/azure"
	"github.com/agentgov/governor/pkg/errno"
)

func newTestStore(t *testing.T) store.Factory {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Agent{}, &model.KnowledgeSource{}, &model.AgentKnowledgeSource{}))
	return store.New(db)
}

// fakeGateway records calls and serves blobs from memory. Error fields
// make individual steps fail on demand.
type fakeGateway struct {
	mu sync.Mutex

	calls             []string
	containers        []string
	deletedContainers []string
	budgets           map[string]azure.BudgetStatus
	blobs             map[string][]byte

	onCreateContainer func()

	containerErr    error
	budgetErr       error
	workspaceErr    error
	hostErr         error
	deployErr       error
	deleteErr       error
	noStorageAcct   bool
	lastDeployment  string
	lastModelName   string
	lastOwnerEmail  string
	lastBudgetLimit float64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		budgets: make(map[string]azure.BudgetStatus),
		blobs:   make(map[string][]byte),
	}
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGateway) CreateContainer(_ context.Context, name, _ string) error {
	g.record("CreateContainer")
	if g.onCreateContainer != nil {
		g.onCreateContainer()
	}
	if g.containerErr != nil {
		return g.containerErr
	}
	g.mu.Lock()
	g.containers = append(g.containers, name)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) DeleteContainer(_ context.Context, name string) error {
	g.record("DeleteContainer")
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.mu.Lock()
	g.deletedContainers = append(g.deletedContainers, name)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) CreateBudget(_ context.Context, container, ownerEmail string, monthlyAmount float64) error {
	g.record("CreateBudget")
	if g.budgetErr != nil {
		return g.budgetErr
	}
	g.lastOwnerEmail = ownerEmail
	g.lastBudgetLimit = monthlyAmount
	g.budgets[container] = azure.BudgetStatus{Limit: monthlyAmount, Unit: "USD"}
	return nil
}

func (g *fakeGateway) BudgetStatus(_ context.Context, container string) (azure.BudgetStatus, error) {
	g.record("BudgetStatus")
	return g.budgets[container], nil
}

func (g *fakeGateway) CreateWorkspace(_ context.Context, container, name, _, _ string) (string, error) {
	g.record("CreateWorkspace")
	if g.workspaceErr != nil {
		return "", g.workspaceErr
	}
	return fmt.Sprintf("https://eastus.api.azureml.ms/discovery/%s/%s", container, name), nil
}

func (g *fakeGateway) CreateModelHost(_ context.Context, _, name, _ string) (azure.ModelHost, error) {
	g.record("CreateModelHost")
	if g.hostErr != nil {
		return azure.ModelHost{}, g.hostErr
	}
	return azure.ModelHost{
		Endpoint: fmt.Sprintf("https://%s.openai.azure.com/", name),
		Key:      "test-key-" + name,
	}, nil
}

func (g *fakeGateway) DeployModel(_ context.Context, _, _, deployment, modelName, _ string) error {
	g.record("DeployModel")
	if g.deployErr != nil {
		return g.deployErr
	}
	g.lastDeployment = deployment
	g.lastModelName = modelName
	return nil
}

func (g *fakeGateway) EnsureBlobContainer(_ context.Context, _, _ string) error {
	g.record("EnsureBlobContainer")
	if g.noStorageAcct {
		return errno.ErrStorageAccountNotFound
	}
	return nil
}

func (g *fakeGateway) PutBlob(_ context.Context, _, blobContainer, blobName string, data []byte) (string, error) {
	g.record("PutBlob")
	if g.noStorageAcct {
		return "", errno.ErrStorageAccountNotFound
	}
	url := fmt.Sprintf("https://testacct.blob.core.windows.net/%s/%s", blobContainer, blobName)
	g.mu.Lock()
	g.blobs[url] = data
	g.mu.Unlock()
	return url, nil
}

func (g *fakeGateway) GetBlob(_ context.Context, _, blobURL string) ([]byte, error) {
	g.record("GetBlob")
	g.mu.Lock()
	data, ok := g.blobs[blobURL]
	g.mu.Unlock()
	if !ok {
		return nil, errno.ErrKnowledgeNotFound
	}
	return data, nil
}

var _ azure.Gateway = (*fakeGateway)(nil)

// fakeChatClient returns a canned reply and records what it was called
// with.
type fakeChatClient struct {
	reply string
	err   error

	calls      int
	endpoint   string
	apiKey     string
	deployment string
	input      string
}

func (c *fakeChatClient) Complete(_ context.Context, endpoint, apiKey, deployment, input string) (string, error) {
	c.calls++
	c.endpoint = endpoint
	c.apiKey = apiKey
	c.deployment = deployment
	c.input = input
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

var _ ChatClient = (*fakeChatClient)(nil)
