package azure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	armmachinelearning "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/kart-io/logger"

	"github.com/agentgov/governor/pkg/errno"
)

// deployTimeout bounds how long DeployModel waits for a deployment to
// become ready.
const deployTimeout = time.Hour

// Client implements Gateway over the Azure SDK management clients. All
// underlying clients are constructed once and are safe for concurrent use.
type Client struct {
	opts *Options

	resourceGroups  *armresources.ResourceGroupsClient
	budgets         *armconsumption.BudgetsClient
	workspaces      *armmachinelearning.WorkspacesClient
	accounts        *armcognitiveservices.AccountsClient
	deployments     *armcognitiveservices.DeploymentsClient
	storageAccounts *armstorage.AccountsClient
}

var _ Gateway = (*Client)(nil)

// New creates a gateway client using the default Azure credential chain
// (environment, workload identity, managed identity, CLI).
func New(opts *Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("azure options cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid azure options: %w", err)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain azure credential: %w", err)
	}

	rg, err := armresources.NewResourceGroupsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}
	budgets, err := armconsumption.NewBudgetsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create budgets client: %w", err)
	}
	ws, err := armmachinelearning.NewWorkspacesClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspaces client: %w", err)
	}
	accounts, err := armcognitiveservices.NewAccountsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cognitive accounts client: %w", err)
	}
	deployments, err := armcognitiveservices.NewDeploymentsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployments client: %w", err)
	}
	storage, err := armstorage.NewAccountsClient(opts.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage accounts client: %w", err)
	}

	return &Client{
		opts:            opts,
		resourceGroups:  rg,
		budgets:         budgets,
		workspaces:      ws,
		accounts:        accounts,
		deployments:     deployments,
		storageAccounts: storage,
	}, nil
}

// scope returns the consumption scope string for a resource group.
func (c *Client) scope(container string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", c.opts.SubscriptionID, container)
}

// CreateContainer creates or updates the agent's resource group.
func (c *Client) CreateContainer(ctx context.Context, name, location string) error {
	_, err := c.resourceGroups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags:     map[string]*string{"type": to.Ptr("agent")},
	}, nil)
	if err != nil {
		return errno.ErrGateway.WithMessagef("failed to create resource group %s", name).WithCause(err)
	}
	return nil
}

// DeleteContainer fires the resource group deletion without waiting on the
// long-running operation.
func (c *Client) DeleteContainer(ctx context.Context, name string) error {
	if _, err := c.resourceGroups.BeginDelete(ctx, name, nil); err != nil {
		return errno.ErrGateway.WithMessagef("failed to delete resource group %s", name).WithCause(err)
	}
	return nil
}

// CreateBudget creates or updates the container's monthly budget. The
// tracked window runs from the first of the current month through one
// year later, with one notification at 80% of actual spend.
func (c *Client) CreateBudget(ctx context.Context, container, ownerEmail string, monthlyAmount float64) error {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	budget := armconsumption.Budget{
		Properties: &armconsumption.BudgetProperties{
			Amount:    to.Ptr(monthlyAmount),
			Category:  to.Ptr(armconsumption.CategoryTypeCost),
			TimeGrain: to.Ptr(armconsumption.TimeGrainTypeMonthly),
			TimePeriod: &armconsumption.BudgetTimePeriod{
				StartDate: to.Ptr(start),
				EndDate:   to.Ptr(end),
			},
			Notifications: map[string]*armconsumption.Notification{
				"Actual_GreaterThan_80_Percent": {
					Enabled:       to.Ptr(true),
					Operator:      to.Ptr(armconsumption.OperatorTypeGreaterThan),
					Threshold:     to.Ptr[float64](80),
					ThresholdType: to.Ptr(armconsumption.ThresholdTypeActual),
					ContactEmails: []*string{to.Ptr(ownerEmail)},
				},
			},
		},
	}

	_, err := c.budgets.CreateOrUpdate(ctx, c.scope(container), container+"-budget", budget, nil)
	if err != nil {
		return errno.ErrGateway.WithMessagef("failed to create budget for %s", container).WithCause(err)
	}
	return nil
}

// BudgetStatus reads the budget limit and provider-reported spend.
func (c *Client) BudgetStatus(ctx context.Context, container string) (BudgetStatus, error) {
	resp, err := c.budgets.Get(ctx, c.scope(container), container+"-budget", nil)
	if err != nil {
		return BudgetStatus{}, errno.ErrGateway.WithMessagef("failed to read budget for %s", container).WithCause(err)
	}

	status := BudgetStatus{}
	if props := resp.Properties; props != nil {
		if props.Amount != nil {
			status.Limit = *props.Amount
		}
		// The provider reports no spend at all until the first cost record
		// lands; treat that as zero.
		if spend := props.CurrentSpend; spend != nil {
			if spend.Amount != nil {
				status.CurrentSpend = *spend.Amount
			}
			if spend.Unit != nil {
				status.Unit = *spend.Unit
			}
		}
	}
	return status, nil
}

// CreateWorkspace creates the managed ML workspace and returns its
// discovery endpoint.
func (c *Client) CreateWorkspace(ctx context.Context, container, name, displayName, description string) (string, error) {
	poller, err := c.workspaces.BeginCreateOrUpdate(ctx, container, name, armmachinelearning.Workspace{
		Location: to.Ptr(locationOfGroup(ctx, c.resourceGroups, container)),
		Properties: &armmachinelearning.WorkspaceProperties{
			FriendlyName: to.Ptr(displayName),
			Description:  to.Ptr(description),
		},
	}, nil)
	if err != nil {
		return "", errno.ErrGateway.WithMessagef("failed to create workspace %s", name).WithCause(err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return "", errno.ErrGateway.WithMessagef("workspace %s did not become ready", name).WithCause(err)
	}

	got, err := c.workspaces.Get(ctx, container, name, nil)
	if err != nil {
		return "", errno.ErrGateway.WithMessagef("failed to read workspace %s", name).WithCause(err)
	}
	if got.Properties == nil || got.Properties.DiscoveryURL == nil {
		return "", errno.ErrGateway.WithMessagef("workspace %s has no discovery endpoint", name)
	}
	return *got.Properties.DiscoveryURL, nil
}

// CreateModelHost creates the OpenAI account and retrieves its endpoint
// and primary key.
func (c *Client) CreateModelHost(ctx context.Context, container, name, location string) (ModelHost, error) {
	poller, err := c.accounts.BeginCreate(ctx, container, name, armcognitiveservices.Account{
		Kind:       to.Ptr("OpenAI"),
		SKU:        &armcognitiveservices.SKU{Name: to.Ptr("S0")},
		Location:   to.Ptr(location),
		Properties: &armcognitiveservices.AccountProperties{},
	}, nil)
	if err != nil {
		return ModelHost{}, errno.ErrGateway.WithMessagef("failed to create OpenAI account %s", name).WithCause(err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return ModelHost{}, errno.ErrGateway.WithMessagef("OpenAI account %s did not become ready", name).WithCause(err)
	}
	if resp.Properties == nil || resp.Properties.Endpoint == nil {
		return ModelHost{}, errno.ErrGateway.WithMessagef("OpenAI account %s has no endpoint", name)
	}

	keys, err := c.accounts.ListKeys(ctx, container, name, nil)
	if err != nil {
		return ModelHost{}, errno.ErrGateway.WithMessagef("failed to list keys for %s", name).WithCause(err)
	}
	if keys.Key1 == nil {
		return ModelHost{}, errno.ErrGateway.WithMessagef("OpenAI account %s returned no primary key", name)
	}

	return ModelHost{Endpoint: *resp.Properties.Endpoint, Key: *keys.Key1}, nil
}

// DeployModel creates the hosted deployment and waits up to one hour for
// it to become ready. A provider rejection and an unexpected failure are
// told apart in the logs only; callers see the same error kind.
func (c *Client) DeployModel(ctx context.Context, container, host, deployment, modelName, modelVersion string) error {
	if modelVersion == "" {
		modelVersion = c.opts.ModelVersion
	}

	ctx, cancel := context.WithTimeout(ctx, deployTimeout)
	defer cancel()

	poller, err := c.deployments.BeginCreateOrUpdate(ctx, container, host, deployment, armcognitiveservices.Deployment{
		SKU: &armcognitiveservices.SKU{
			Name:     to.Ptr("Standard"),
			Capacity: to.Ptr[int32](1),
		},
		Properties: &armcognitiveservices.DeploymentProperties{
			Model: &armcognitiveservices.DeploymentModel{
				Format:  to.Ptr("OpenAI"),
				Name:    to.Ptr(modelName),
				Version: to.Ptr(modelVersion),
			},
		},
	}, nil)
	if err == nil {
		_, err = poller.PollUntilDone(ctx, nil)
	}
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			logger.Errorw("model deployment rejected by provider",
				"deployment", deployment, "status", respErr.StatusCode, "code", respErr.ErrorCode)
		} else {
			logger.Errorw("model deployment failed unexpectedly", "deployment", deployment, "error", err)
		}
		return errno.ErrGateway.WithMessagef("failed to deploy model %s", deployment).WithCause(err)
	}

	logger.Infow("model deployment completed", "deployment", deployment)
	return nil
}

// locationOfGroup reads the resource group's location so dependent
// resources land in the same region. Falls back to empty on error; the
// provider then rejects the request with a clear message.
func locationOfGroup(ctx context.Context, client *armresources.ResourceGroupsClient, name string) string {
	resp, err := client.Get(ctx, name, nil)
	if err != nil || resp.Location == nil {
		return ""
	}
	return *resp.Location
}
