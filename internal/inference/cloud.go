package inference

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

// CloudEngine calls Anthropic's Messages API as the inference chain's
// last-resort tier. Its system prompt extends the local tier's with the
// Shell and Reply actions, since only the cloud tier is trusted to
// propose a raw shell command or a conversational reply.
type CloudEngine struct {
	client  anthropic.Client
	Model   anthropic.Model
	Timeout time.Duration
	Tier    protocol.InferenceTier
}

// NewCloudEngine creates a CloudEngine using apiKey, targeting model, and
// tagging its results with tier (CloudLite/CloudHaiku/CloudSonnet,
// depending on which model the caller configures).
func NewCloudEngine(apiKey string, model anthropic.Model, tier protocol.InferenceTier) *CloudEngine {
	return &CloudEngine{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:   model,
		Timeout: 15 * time.Second,
		Tier:    tier,
	}
}

func (e *CloudEngine) Parse(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.Model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: cloudSystemPrompt(catalog)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, nil
	}

	raw := extractText(message)
	if raw == "" {
		return nil, nil
	}

	var parsed llmIntent
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, nil
	}

	return e.validate(parsed, catalog), nil
}

// validate routes by the declared action, per-action, per the cloud
// tier's extended rule set (Tool/Shell/Reply).
func (e *CloudEngine) validate(parsed llmIntent, catalog []tools.Info) *protocol.ParsedIntent {
	switch protocol.ActionKind(parsed.Action) {
	case protocol.ActionShell:
		cmd := strings.TrimSpace(parsed.ToolName)
		if cmd == "" || parsed.Confidence < minConfidence {
			return nil
		}
		return &protocol.ParsedIntent{Action: protocol.ActionShell, ToolName: cmd, Confidence: parsed.Confidence}

	case protocol.ActionReply:
		msg := strings.TrimSpace(parsed.Message)
		if msg == "" {
			return nil
		}
		return &protocol.ParsedIntent{
			Action:     protocol.ActionReply,
			ToolArgs:   map[string]any{"message": msg},
			Confidence: 1.0,
		}

	default: // Tool, or an unset/unknown action defaulting to Tool.
		return validateToolOnlyIntent(parsed, catalog)
	}
}

func cloudSystemPrompt(catalog []tools.Info) string {
	var b strings.Builder
	b.WriteString(systemPrompt(catalog))
	b.WriteString("\nYou may also respond with {\"action\": \"shell\", \"tool_name\": \"<command>\", \"confidence\": number} " +
		"to run a read-only shell command, or {\"action\": \"reply\", \"message\": \"<text>\"} to answer conversationally " +
		"without running anything.")
	return b.String()
}

func extractText(message *anthropic.Message) string {
	if message == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// stripCodeFence removes an optional ```json ... ``` or ``` ... ``` fence
// wrapping raw before it's parsed as JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
