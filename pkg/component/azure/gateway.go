// Package azure implements the remote resource gateway: a uniform,
// synchronous interface over the Azure control-plane SDKs for everything
// one agent needs (resource group, budget, ML workspace, OpenAI account,
// model deployment, blob storage).
//
// Long-running provider operations are collapsed into blocking waits so
// callers see plain success or failure. The gateway owns no persistent
// state; it is constructed once at startup and injected wherever needed.
package azure

import "context"

// BudgetStatus is a read-only snapshot of a container's budget.
type BudgetStatus struct {
	// Limit is the configured monthly spend ceiling.
	Limit float64 `json:"amount"`

	// CurrentSpend is the provider-reported spend, zero when the provider
	// has no spend record yet.
	CurrentSpend float64 `json:"current_spend"`

	// Unit is the currency unit of CurrentSpend.
	Unit string `json:"unit"`
}

// ModelHost holds the credentials of a created model-hosting account.
type ModelHost struct {
	Endpoint string
	Key      string
}

// Gateway is the single seam between the service and the cloud provider.
// One method per managed resource type; implementations block until the
// remote operation completes or fails.
type Gateway interface {
	// CreateContainer creates or updates the resource group for an agent,
	// tagged as an agent container. Idempotent.
	CreateContainer(ctx context.Context, name, location string) error

	// DeleteContainer requests deletion of the resource group. The request
	// is fired without waiting for completion; callers treat failures as
	// best-effort.
	DeleteContainer(ctx context.Context, name string) error

	// CreateBudget creates or updates the monthly budget scoped to the
	// container, with an 80%-of-actual-spend notification to ownerEmail.
	// Idempotent by budget name (<container>-budget).
	CreateBudget(ctx context.Context, container, ownerEmail string, monthlyAmount float64) error

	// BudgetStatus reads the budget limit and current spend for a container.
	BudgetStatus(ctx context.Context, container string) (BudgetStatus, error)

	// CreateWorkspace creates the managed ML workspace and returns its
	// discovery endpoint. Blocks until the workspace is ready.
	CreateWorkspace(ctx context.Context, container, name, displayName, description string) (string, error)

	// CreateModelHost creates the OpenAI account, blocks to completion and
	// retrieves its primary access key.
	CreateModelHost(ctx context.Context, container, name, location string) (ModelHost, error)

	// DeployModel creates the hosted model deployment and blocks up to one
	// hour for it to become ready. Failures are not retried.
	DeployModel(ctx context.Context, container, host, deployment, modelName, modelVersion string) error

	// EnsureBlobContainer creates the named blob container inside the
	// agent container's storage account if it does not already exist.
	EnsureBlobContainer(ctx context.Context, container, blobContainer string) error

	// PutBlob uploads data, overwriting any existing blob of the same
	// name, and returns the blob URL.
	PutBlob(ctx context.Context, container, blobContainer, blobName string, data []byte) (string, error)

	// GetBlob downloads a blob by its URL. The URL is the sole locator;
	// the access key is re-derived from the container's storage account.
	GetBlob(ctx context.Context, container, blobURL string) ([]byte, error)
}
