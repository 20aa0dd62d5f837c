package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*AnthropicOptions)(nil)

// AnthropicOptions configures the two cloud-tier LLM engines the
// inference chain escalates to: a cheap default model and a more
// capable escalation model for commands the cheaper tiers can't
// confidently resolve.
type AnthropicOptions struct {
	APIKey          string        `json:"api_key" mapstructure:"api-key"`
	Model           string        `json:"model" mapstructure:"model"`
	EscalationModel string        `json:"escalation_model" mapstructure:"escalation-model"`
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`
	Enabled         bool          `json:"enabled" mapstructure:"enabled"`
}

// NewAnthropicOptions creates an AnthropicOptions with default
// parameters. APIKey is left empty; it is set with the anthropic.api-key
// flag, and no environment variable is read.
func NewAnthropicOptions() *AnthropicOptions {
	return &AnthropicOptions{
		Model:           "claude-3-5-haiku-20241022",
		EscalationModel: "claude-3-5-sonnet-20241022",
		Timeout:         15 * time.Second,
		Enabled:         true,
	}
}

func (o *AnthropicOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if err := validateNonEmpty("anthropic.api-key", o.APIKey); err != nil {
		errs = append(errs, err)
	}
	if err := validateNonEmpty("anthropic.model", o.Model); err != nil {
		errs = append(errs, err)
	}
	if err := validateNonEmpty("anthropic.escalation-model", o.EscalationModel); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (o *AnthropicOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "anthropic.enabled", o.Enabled, "Enable the cloud-tier Anthropic inference engines.")
	fs.StringVar(&o.APIKey, "anthropic.api-key", o.APIKey, "Anthropic API key.")
	fs.StringVar(&o.Model, "anthropic.model", o.Model, "Default cloud-tier model.")
	fs.StringVar(&o.EscalationModel, "anthropic.escalation-model", o.EscalationModel, "Escalation-tier model for low-confidence commands.")
	fs.DurationVar(&o.Timeout, "anthropic.timeout", o.Timeout, "Request timeout for Anthropic Messages calls.")
}
