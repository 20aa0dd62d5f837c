package options

import "github.com/spf13/pflag"

var _ IOptions = (*IdentityOptions)(nil)

// IdentityOptions names the fleet and, for an agent binary, the specific
// device this process acts as. The cloud dispatcher leaves DeviceID empty
// and sets Group instead, identifying its shared-subscription replica
// group for fleet-wide topics.
type IdentityOptions struct {
	FleetID  string `json:"fleet_id" mapstructure:"fleet-id"`
	DeviceID string `json:"device_id" mapstructure:"device-id"`
	Group    string `json:"group" mapstructure:"group"`
}

// NewIdentityOptions creates an IdentityOptions with FleetID and DeviceID
// left empty, since both are deployment-specific; Group defaults to
// "cloud".
func NewIdentityOptions() *IdentityOptions {
	return &IdentityOptions{Group: "cloud"}
}

func (o *IdentityOptions) Validate() []error {
	var errs []error
	if err := validateNonEmpty("identity.fleet-id", o.FleetID); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (o *IdentityOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.FleetID, "identity.fleet-id", o.FleetID, "Fleet this process belongs to.")
	fs.StringVar(&o.DeviceID, "identity.device-id", o.DeviceID, "Device identity (agent binaries only).")
	fs.StringVar(&o.Group, "identity.group", o.Group, "Shared-subscription replica group (cloud dispatcher only).")
}
