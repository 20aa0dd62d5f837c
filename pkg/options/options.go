// Package options defines the typed configuration surface shared by
// the fleet agent and cloud dispatcher binaries: each concern (MQTT,
// HTTP, Ollama, Anthropic, Redis) gets its own *Options type satisfying
// IOptions and exposed as pflag flags.
package options

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/pflag"
)

// IOptions is the capability every configuration section implements so
// a command can fold them into one flag set and validate them
// uniformly regardless of which concerns a given binary carries.
type IOptions interface {
	// Validate checks the option values already bound from flags/config/
	// env, returning every problem found rather than stopping at the
	// first one.
	Validate() []error

	// AddFlags registers this section's flags on fs. prefixes lets a
	// caller nest the same option type under more than one name (unused
	// by every option type so far, but part of the shared shape).
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a well-formed host:port pair.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address must not be empty")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if port == "" {
		return fmt.Errorf("invalid address %q: missing port", addr)
	}
	_ = host
	return nil
}

// validateNonEmpty is a small shared helper for the "this field is
// required" check several option types repeat.
func validateNonEmpty(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	return nil
}
