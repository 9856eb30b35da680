// Package ai lets the habitat borrow a language model for flavor text:
// garden associations, echo debate statements, and optional web
// context for planted seeds. Everything here degrades cleanly; with no
// API key the engines stay on their built-in templates.
package ai

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ericgreene/go-serp"
	openai "github.com/sashabaranov/go-openai"

	"github.com/vestalabs/habitat/logging"
)

// LLMConfig holds the knobs for model calls.
type LLMConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultLLMConfig returns the standard model configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       openai.GPT3Dot5Turbo,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// SearchConfig holds the knobs for web search.
type SearchConfig struct {
	MaxResults int
	SafeSearch bool
}

// DefaultSearchConfig returns the standard search configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxResults: 5,
		SafeSearch: true,
	}
}

// SearchResult is one organic web result.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// ResearchDecision is the model's own call on whether web context
// would help it grow a seed.
type ResearchDecision struct {
	NeedsResearch bool     `json:"needs_research"`
	SearchQueries []string `json:"search_queries"`
	Reasoning     string   `json:"reasoning"`
}

// Client wraps the model and search backends. The zero-value-like
// client built from empty keys is valid and answers with nothing,
// which the engines treat as "use your templates".
type Client struct {
	llm     *openai.Client
	serpKey string
	config  LLMConfig
}

// NewClient builds a client from API keys. Either key may be empty.
func NewClient(openaiKey, serpKey string) *Client {
	c := &Client{serpKey: serpKey, config: DefaultLLMConfig()}
	if openaiKey == "" {
		logging.Default().Warn("OPENAI_API_KEY not set, experiments stay on template responses")
	} else {
		c.llm = openai.NewClient(openaiKey)
	}
	if serpKey == "" {
		logging.Default().Warn("SERP_API_KEY not set, web enrichment disabled")
	}
	return c
}

// Available reports whether model calls can be made at all.
func (c *Client) Available() bool {
	return c != nil && c.llm != nil
}

func (c *Client) query(ctx context.Context, system, user string) (string, error) {
	resp, err := c.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// Associations grows related concepts for a planted seed. Satisfies
// the garden's Associator; returns nil on any failure so the garden
// falls back to its templates.
func (c *Client) Associations(ctx context.Context, seed string) []string {
	if !c.Available() {
		return nil
	}

	prompt := "An agent planted the concept \"" + seed + "\" in a shared semantic garden.\n" +
		"Name 3 to 5 closely related concepts it could grow into.\n" +
		"Answer with one concept per line, nothing else."
	if findings := c.research(ctx, seed); findings != "" {
		prompt = "Context from a quick web search:\n" + findings + "\n" + prompt
	}

	response, err := c.query(ctx, "You are the semantic garden of the Vesta habitat.", prompt)
	if err != nil {
		logging.Default().Warn("association query failed, using templates", "seed", seed, "error", err)
		return nil
	}
	return parseList(response, 5)
}

// Statement voices one debate turn. Satisfies the echo chamber's
// Speaker; returns "" on any failure so the chamber falls back to its
// templates.
func (c *Client) Statement(ctx context.Context, echoName, bias, topic string) string {
	if !c.Available() {
		return ""
	}

	prompt := "You are the " + echoName + " of an AI agent debating itself.\n" +
		"Your bias: " + bias + "\n" +
		"Topic: " + topic + "\n" +
		"Give your statement for this round in one or two sentences, in character."
	response, err := c.query(ctx, "You are one voice in a self-debate inside the Vesta habitat.", prompt)
	if err != nil {
		logging.Default().Warn("debate statement query failed, using templates", "echo", echoName, "error", err)
		return ""
	}
	return strings.TrimSpace(response)
}

// research asks the model whether web context would help with the
// seed, runs the searches it proposes, and formats the findings. Any
// failure along the way returns "".
func (c *Client) research(ctx context.Context, seed string) string {
	if c.serpKey == "" {
		return ""
	}

	decision, err := c.decideResearch(ctx, seed)
	if err != nil || !decision.NeedsResearch {
		return ""
	}

	var findings strings.Builder
	for _, query := range decision.SearchQueries {
		results, err := c.WebSearch(query, DefaultSearchConfig())
		if err != nil {
			continue
		}
		for _, result := range results {
			findings.WriteString("- " + result.Title + "\n  " + result.Snippet + "\n")
		}
	}
	return findings.String()
}

func (c *Client) decideResearch(ctx context.Context, seed string) (*ResearchDecision, error) {
	prompt := "A concept seed was planted: \"" + seed + "\"\n" +
		"Decide if a web search would help you suggest related concepts.\n" +
		"Return a JSON object with:\n" +
		"{\n" +
		"  \"needs_research\": boolean,\n" +
		"  \"search_queries\": [\"query1\", \"query2\"],\n" +
		"  \"reasoning\": \"one sentence\"\n" +
		"}"
	response, err := c.query(ctx, "You decide when to search the web. Answer with JSON only.", prompt)
	if err != nil {
		return nil, err
	}

	var decision ResearchDecision
	if err := json.Unmarshal([]byte(response), &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// WebSearch runs a Google search through SERP and keeps the organic
// results.
func (c *Client) WebSearch(query string, config SearchConfig) ([]SearchResult, error) {
	parameter := map[string]string{
		"q":   query,
		"key": c.serpKey,
		"num": strconv.Itoa(config.MaxResults),
	}
	if config.SafeSearch {
		parameter["safe"] = "active"
	}

	search := serp.NewGoogleSearch(parameter)
	results, err := search.GetJSON()
	if err != nil {
		return nil, err
	}

	var out []SearchResult
	for _, result := range results.OrganicResults {
		out = append(out, SearchResult{
			Title:   result.Title,
			Snippet: result.Snippet,
			Link:    result.Link,
		})
	}
	return out, nil
}

// parseList splits a model answer into up to max clean entries. Lines
// win; a single line of comma-separated items is split instead.
// Bullets and list numbering are stripped.
func parseList(response string, max int) []string {
	lines := []string{}
	for _, line := range strings.Split(response, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 1 && strings.Contains(lines[0], ",") {
		lines = strings.Split(lines[0], ",")
	}

	items := []string{}
	for _, line := range lines {
		item := strings.TrimSpace(line)
		item = strings.TrimLeft(item, "-*• \t")
		if i := strings.IndexAny(item, ".)"); i > 0 && i <= 2 && isDigits(item[:i]) {
			item = strings.TrimSpace(item[i+1:])
		}
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == max {
			break
		}
	}
	return items
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
