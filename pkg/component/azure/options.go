package azure

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/agentgov/governor/pkg/component"
)

var _ component.ConfigOptions = (*Options)(nil)

// Options defines configuration options for the Azure gateway.
type Options struct {
	// SubscriptionID is the Azure subscription all resources live under.
	SubscriptionID string `json:"subscription-id" mapstructure:"subscription-id"`

	// ModelVersion is the model version requested on deployments.
	ModelVersion string `json:"model-version" mapstructure:"model-version"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		ModelVersion: "0613",
	}
}

// Complete fills in unset fields from the environment.
func (o *Options) Complete() error {
	if o.SubscriptionID == "" {
		o.SubscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.SubscriptionID == "" {
		return fmt.Errorf("azure subscription id is required (flag or AZURE_SUBSCRIPTION_ID)")
	}
	return nil
}

// AddFlags adds flags for Azure options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.SubscriptionID, namePrefix+"subscription-id", o.SubscriptionID, "Azure subscription ID")
	fs.StringVar(&o.ModelVersion, namePrefix+"model-version", o.ModelVersion, "Model version for OpenAI deployments")
}
