// Package app assembles the fleet agent binary: an MQTT-connected
// command loop, a tiered inference chain, and the vehicle-diagnostic
// tool registry it dispatches commands against.
package app

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/zeroclaw-io/fleetdiag/cmd/fleetdiag-agent/app/options"
	"github.com/zeroclaw-io/fleetdiag/internal/agent"
	"github.com/zeroclaw-io/fleetdiag/internal/executor"
	"github.com/zeroclaw-io/fleetdiag/internal/inference"
	"github.com/zeroclaw-io/fleetdiag/internal/logs"
	"github.com/zeroclaw-io/fleetdiag/internal/obd"
	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/shell"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
	"github.com/zeroclaw-io/fleetdiag/internal/transport"
	"github.com/zeroclaw-io/fleetdiag/pkg/app"
	"github.com/zeroclaw-io/fleetdiag/pkg/log"
	"github.com/zeroclaw-io/fleetdiag/pkg/mqtt"
)

const (
	commandName = "fleetdiag-agent"
	commandDesc = `fleetdiag-agent runs on a vehicle's diagnostic edge device. It maintains
an MQTT connection to the fleet broker, resolves natural-language and
structured commands through a tiered inference chain, and executes them
against the vehicle's OBD-II bus, its logs, and a narrow allow-listed
shell.`
)

// NewApp builds the cobra-backed application for the agent binary.
func NewApp() *app.App {
	opts := options.NewAgentOptions()
	return app.NewApp(
		commandName,
		"Run the fleet diagnostic edge agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func(ctx context.Context) error {
		log.Init(opts.Log)

		a, err := build(opts)
		if err != nil {
			return fmt.Errorf("fleetdiag-agent: %w", err)
		}
		return a.Run(ctx)
	}
}

// build wires one Agent from validated options: an MQTT channel, the
// diagnostic bus and its tool registry, and the tiered inference chain
// escalating from the rule engine through Ollama to Anthropic.
func build(opts *options.AgentOptions) (*agent.Agent, error) {
	client, err := mqtt.NewClient(opts.Mqtt.ToClientConfig())
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	channel := transport.NewChannel(client)

	// No SocketCAN driver is wired (see DESIGN.md); the agent drives its
	// tool registry against an in-memory bus until real hardware access
	// is added.
	bus := obd.NewMockBus(0x7E8)
	engine := obd.NewEngine(bus)

	registry := tools.New()
	tools.RegisterCanTools(registry, engine)
	tools.RegisterLogTools(registry, logs.FileSource{Path: opts.LogPath})

	shellExecutor := shell.NewExecutor()
	tools.RegisterQueryJournalTool(registry, shell.NewToolRunner(shellExecutor))

	chain := buildChain(opts)
	ex := executor.New(registry, shellExecutor, chain)

	return agent.New(opts.Identity.DeviceID, opts.Identity.FleetID, channel, ex), nil
}

func buildChain(opts *options.AgentOptions) *inference.Chain {
	engines := []inference.TieredEngine{
		{Tier: protocol.TierLocal, Engine: inference.NewRuleEngine()},
	}
	if opts.Ollama.Enabled {
		engines = append(engines, inference.TieredEngine{
			Tier:   protocol.TierOllama,
			Engine: inference.NewLocalEngine(opts.Ollama.Endpoint, opts.Ollama.Model),
		})
	}
	if opts.Anthropic.Enabled && opts.Anthropic.APIKey != "" {
		engines = append(engines,
			inference.TieredEngine{
				Tier:   protocol.TierCloudHaiku,
				Engine: inference.NewCloudEngine(opts.Anthropic.APIKey, anthropic.Model(opts.Anthropic.Model), protocol.TierCloudHaiku),
			},
			inference.TieredEngine{
				Tier:   protocol.TierCloudSonnet,
				Engine: inference.NewCloudEngine(opts.Anthropic.APIKey, anthropic.Model(opts.Anthropic.EscalationModel), protocol.TierCloudSonnet),
			},
		)
	}
	return inference.NewChain(engines...)
}
