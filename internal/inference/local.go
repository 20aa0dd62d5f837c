package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

// LocalEngine calls a local Ollama instance's chat endpoint, with the
// tool catalog embedded in the system prompt and a strict JSON response
// format. Any failure — transport, timeout, invalid JSON, unknown tool,
// low confidence — is swallowed and reported as "no result", not an
// error, so the chain falls through to the next tier.
type LocalEngine struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
	client   *http.Client
}

// NewLocalEngine creates a LocalEngine targeting endpoint (e.g.
// "http://localhost:11434") with the given model name.
func NewLocalEngine(endpoint, model string) *LocalEngine {
	return &LocalEngine{
		Endpoint: endpoint,
		Model:    model,
		Timeout:  5 * time.Second,
		client:   &http.Client{},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Format   string          `json:"format"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// llmIntent is the strict JSON shape both LLM tiers ask their model to
// emit; it's intentionally looser than protocol.ParsedIntent so a
// malformed or partial response can still be validated field by field
// instead of failing to unmarshal at all.
type llmIntent struct {
	Action     string         `json:"action"`
	ToolName   string         `json:"tool_name"`
	ToolArgs   map[string]any `json:"tool_args"`
	Message    string         `json:"message"`
	Confidence float64        `json:"confidence"`
}

func (e *LocalEngine) Parse(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	reqBody := ollamaChatRequest{
		Model: e.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt(catalog)},
			{Role: "user", Content: text},
		},
		Format: "json",
		Stream: false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(e.Endpoint, "/")+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, nil
	}

	var parsed llmIntent
	if err := json.Unmarshal([]byte(chatResp.Message.Content), &parsed); err != nil {
		return nil, nil
	}

	return validateToolOnlyIntent(parsed, catalog), nil
}

// validateToolOnlyIntent applies the local-tier validation rules: tool
// name present, known to the catalog, and confidence above the floor.
func validateToolOnlyIntent(parsed llmIntent, catalog []tools.Info) *protocol.ParsedIntent {
	if parsed.ToolName == "" || parsed.Confidence < minConfidence {
		return nil
	}
	if !catalogHasTool(catalog, parsed.ToolName) {
		return nil
	}
	return &protocol.ParsedIntent{
		Action:     protocol.ActionTool,
		ToolName:   parsed.ToolName,
		ToolArgs:   parsed.ToolArgs,
		Confidence: parsed.Confidence,
	}
}

func catalogHasTool(catalog []tools.Info, name string) bool {
	for _, info := range catalog {
		if info.Name == name {
			return true
		}
	}
	return false
}

func systemPrompt(catalog []tools.Info) string {
	var b strings.Builder
	b.WriteString("You are a vehicle diagnostics assistant. Given an operator's request, " +
		"respond with a single JSON object describing how to fulfil it. ")
	b.WriteString("Available tools:\n")
	for _, info := range catalog {
		fmt.Fprintf(&b, "- %s: %s\n", info.Name, info.Description)
	}
	b.WriteString("Respond with JSON: {\"tool_name\": string, \"tool_args\": object, \"confidence\": number}.")
	return b.String()
}
