// Package governor wires the agent governance service together: options,
// dependency construction and the HTTP server lifecycle.
package governor

import (
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/agentgov/governor/pkg/component/azure"
	"github.com/agentgov/governor/pkg/component/mysql"
	httpopts "github.com/agentgov/governor/pkg/options/http"
	logopts "github.com/agentgov/governor/pkg/options/logger"
)

// Options aggregates all configuration for the governor service.
type Options struct {
	Log   *logopts.Options  `json:"log" mapstructure:"log"`
	HTTP  *httpopts.Options `json:"http" mapstructure:"http"`
	MySQL *mysql.Options    `json:"mysql" mapstructure:"mysql"`
	Azure *azure.Options    `json:"azure" mapstructure:"azure"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Log:   logopts.NewOptions(),
		HTTP:  httpopts.NewOptions(),
		MySQL: mysql.NewOptions(),
		Azure: azure.NewOptions(),
	}
}

// AddFlags registers all option flags on the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.MySQL.AddFlags(fs, "mysql.")
	o.Azure.AddFlags(fs, "azure.")
}

// Complete fills in unset fields from the environment.
func (o *Options) Complete() error {
	errs := []error{
		o.Log.Complete(),
		o.HTTP.Complete(),
		o.MySQL.Complete(),
		o.Azure.Complete(),
	}
	return utilerrors.NewAggregate(errs)
}

// Validate checks all options.
func (o *Options) Validate() error {
	errs := []error{
		o.Log.Validate(),
		o.HTTP.Validate(),
		o.MySQL.Validate(),
		o.Azure.Validate(),
	}
	return utilerrors.NewAggregate(errs)
}
