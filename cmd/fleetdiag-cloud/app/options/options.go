// Package options defines the top-level configuration object for the
// cloud dispatcher binary.
package options

import (
	"github.com/spf13/pflag"

	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/options"
)

// CloudOptions is the full configuration surface the cloud dispatcher
// binary needs: broker reachability, its fleet/replica-group identity,
// the optional Redis-backed command store, and an HTTP listener that
// serves Prometheus metrics.
type CloudOptions struct {
	Mqtt     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	Identity *options.IdentityOptions `json:"identity" mapstructure:"identity"`
	Redis    *options.RedisOptions    `json:"redis" mapstructure:"redis"`
	HTTP     *options.HttpOptions     `json:"http" mapstructure:"http"`
	Log      *log.Options             `json:"log" mapstructure:"log"`
}

// NewCloudOptions creates a CloudOptions with every section defaulted.
func NewCloudOptions() *CloudOptions {
	return &CloudOptions{
		Mqtt:     options.NewMqttOptions(),
		Identity: options.NewIdentityOptions(),
		Redis:    options.NewRedisOptions(),
		HTTP:     options.NewHttpOptions(),
		Log:      log.NewOptions(),
	}
}

// AddFlags registers every section's flags on fs.
func (o *CloudOptions) AddFlags(fs *pflag.FlagSet) {
	o.Mqtt.AddFlags(fs)
	o.Identity.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate runs every section's own Validate.
func (o *CloudOptions) Validate() []error {
	var errs []error
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Identity.Validate()...)
	errs = append(errs, o.Redis.Validate()...)
	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errs
}
