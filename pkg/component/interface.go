// Package component holds the service's infrastructure components and
// the configuration contract they share.
package component

import "github.com/spf13/pflag"

// ConfigOptions is the standard interface for component options. The
// MySQL and Azure components implement it so the service can complete,
// validate and flag-bind every component the same way.
type ConfigOptions interface {
	// Complete fills in any fields not set that are required to have
	// valid data, including values sourced from the environment.
	Complete() error

	// Validate checks the options after Complete has run.
	Validate() error

	// AddFlags registers the component's flags under the given name
	// prefix (for example "mysql." or "azure.").
	AddFlags(fs *pflag.FlagSet, namePrefix string)
}
