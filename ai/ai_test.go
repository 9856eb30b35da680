package ai

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	openai "github.com/sashabaranov/go-openai"
)

func TestDefaultConfigs(t *testing.T) {
	llm := DefaultLLMConfig()
	gt.Equal(t, llm.Model, openai.GPT3Dot5Turbo)
	gt.Equal(t, llm.MaxTokens, 2048)
	gt.Equal(t, llm.Temperature, float32(0.7))

	search := DefaultSearchConfig()
	gt.Equal(t, search.MaxResults, 5)
	gt.True(t, search.SafeSearch)
}

func TestClientWithoutKeysStaysQuiet(t *testing.T) {
	ctx := context.Background()

	c := NewClient("", "")
	gt.False(t, c.Available())
	gt.Nil(t, c.Associations(ctx, "rivers"))
	gt.Equal(t, c.Statement(ctx, "Inner Critic", "skeptical of everything", "Is tea better than coffee?"), "")

	var missing *Client
	gt.False(t, missing.Available())
	gt.Nil(t, missing.Associations(ctx, "rivers"))
	gt.Equal(t, missing.Statement(ctx, "Inner Critic", "skeptical", "anything"), "")
}

func TestParseList(t *testing.T) {
	cases := []struct {
		name     string
		response string
		max      int
		expect   []string
	}{
		{
			name:     "bulleted lines",
			response: "- quantum entanglement\n- superposition\n• wave collapse",
			max:      5,
			expect:   []string{"quantum entanglement", "superposition", "wave collapse"},
		},
		{
			name:     "numbered lines",
			response: "1. feedback loops\n2. emergence\n3) adaptation",
			max:      5,
			expect:   []string{"feedback loops", "emergence", "adaptation"},
		},
		{
			name:     "single comma line",
			response: "rivers, deltas, erosion, sediment",
			max:      5,
			expect:   []string{"rivers", "deltas", "erosion", "sediment"},
		},
		{
			name:     "lines win over commas",
			response: "systems thinking, loops\nemergence",
			max:      5,
			expect:   []string{"systems thinking, loops", "emergence"},
		},
		{
			name:     "capped at max",
			response: "a\nb\nc\nd\ne\nf",
			max:      5,
			expect:   []string{"a", "b", "c", "d", "e"},
		},
		{
			name:     "blank response",
			response: "  \n\n",
			max:      5,
			expect:   []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, parseList(tc.response, tc.max), tc.expect)
		})
	}
}
