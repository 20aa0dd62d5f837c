package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*OllamaOptions)(nil)

// OllamaOptions configures the local-tier LLM transport the inference
// chain falls back to before escalating to the cloud tier.
type OllamaOptions struct {
	Endpoint string        `json:"endpoint" mapstructure:"endpoint"`
	Model    string        `json:"model" mapstructure:"model"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
}

// NewOllamaOptions creates an OllamaOptions with default parameters.
func NewOllamaOptions() *OllamaOptions {
	return &OllamaOptions{
		Endpoint: "http://127.0.0.1:11434",
		Model:    "llama3.1:8b",
		Timeout:  5 * time.Second,
		Enabled:  true,
	}
}

func (o *OllamaOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if err := validateNonEmpty("ollama.endpoint", o.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if err := validateNonEmpty("ollama.model", o.Model); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (o *OllamaOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "ollama.enabled", o.Enabled, "Enable the local-tier Ollama inference engine.")
	fs.StringVar(&o.Endpoint, "ollama.endpoint", o.Endpoint, "Base URL of the Ollama server's /api/chat endpoint.")
	fs.StringVar(&o.Model, "ollama.model", o.Model, "Ollama model name to use for local-tier inference.")
	fs.DurationVar(&o.Timeout, "ollama.timeout", o.Timeout, "Request timeout for Ollama chat calls.")
}
