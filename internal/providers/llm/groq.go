package llm

import "time"

// Groq provider is implemented using OpenAICompatible.
type Groq struct {
	*OpenAICompatible
}

// NewGroq creates a new Groq provider.
func NewGroq(apiKey, model string, timeout time.Duration) *Groq {
	return &Groq{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://api.groq.com/openai",
			APIKey:     apiKey,
			Model:      model,
			Timeout:    timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
