package llm

import "strings"

// Token pricing per 1M tokens (USD).
var pricing = map[string]modelPrice{
	// OpenAI
	"gpt-4o":      {Input: 2.50, Output: 10.00},
	"gpt-4o-mini": {Input: 0.15, Output: 0.60},
	"gpt-4-turbo": {Input: 10.00, Output: 30.00},
	"o1":          {Input: 15.00, Output: 60.00},
	"o1-mini":     {Input: 3.00, Output: 12.00},

	// Anthropic
	"claude-3-5-sonnet-20240620": {Input: 3.00, Output: 15.00},
	"claude-3-5-sonnet-20241022": {Input: 3.00, Output: 15.00},
	"claude-3-5-haiku-20241022":  {Input: 0.80, Output: 4.00},
	"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
}

type modelPrice struct {
	Input  float64 // per 1M input tokens
	Output float64 // per 1M output tokens
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// OpenAI reports dated snapshots such as "gpt-4o-2024-08-06"; those fall back
// to the undated price.
func EstimateCost(model string, tokensIn, tokensOut int) float64 {
	p, ok := pricing[model]
	if !ok {
		p, ok = pricing[undated(model)]
	}
	if !ok {
		return 0
	}
	return (float64(tokensIn) * p.Input / 1_000_000) + (float64(tokensOut) * p.Output / 1_000_000)
}

func undated(model string) string {
	parts := strings.Split(model, "-")
	if len(parts) < 4 {
		return model
	}
	n := len(parts)
	if len(parts[n-3]) == 4 && len(parts[n-2]) == 2 && len(parts[n-1]) == 2 {
		return strings.Join(parts[:n-3], "-")
	}
	return model
}
