// Package options defines the top-level configuration object for the
// fleet agent binary: every section is an options.IOptions nested under
// one flag set.
package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/options"
)

// AgentOptions is the full set of configuration sections the fleet
// agent binary needs: how to reach the broker, who it is, and which
// inference tiers to wire into its executor.
type AgentOptions struct {
	Mqtt      *options.MqttOptions      `json:"mqtt" mapstructure:"mqtt"`
	Identity  *options.IdentityOptions  `json:"identity" mapstructure:"identity"`
	Ollama    *options.OllamaOptions    `json:"ollama" mapstructure:"ollama"`
	Anthropic *options.AnthropicOptions `json:"anthropic" mapstructure:"anthropic"`
	Log       *log.Options              `json:"log" mapstructure:"log"`

	// LogPath is the file the search_logs, analyze_errors, log_stats and
	// tail_logs tools read from.
	LogPath string `json:"log_path" mapstructure:"log-path"`
}

// NewAgentOptions creates an AgentOptions with every section defaulted.
func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		Mqtt:      options.NewMqttOptions(),
		Identity:  options.NewIdentityOptions(),
		Ollama:    options.NewOllamaOptions(),
		Anthropic: options.NewAnthropicOptions(),
		Log:       log.NewOptions(),
		LogPath:   "/var/log/syslog",
	}
}

// AddFlags registers every section's flags on fs.
func (o *AgentOptions) AddFlags(fs *pflag.FlagSet) {
	o.Mqtt.AddFlags(fs)
	o.Identity.AddFlags(fs)
	o.Ollama.AddFlags(fs)
	o.Anthropic.AddFlags(fs)
	o.Log.AddFlags(fs)
	fs.StringVar(&o.LogPath, "log-path", o.LogPath, "Path to the device log file the log-inspection tools read from.")
}

// Validate runs every section's own Validate and additionally requires
// the agent-specific device identity to be set.
func (o *AgentOptions) Validate() []error {
	var errs []error
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Identity.Validate()...)
	errs = append(errs, o.Ollama.Validate()...)
	errs = append(errs, o.Anthropic.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if o.Identity.DeviceID == "" {
		errs = append(errs, fmt.Errorf("identity.device-id is required for the agent binary"))
	}
	return errs
}
