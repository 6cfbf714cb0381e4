package agent

import (
	"testing"

	"github.com/solarsmart/salesbot/internal/config"
)

func newTestGate() *Gate {
	return NewGate(&config.ApprovalConfig{Keywords: []string{"price", "cost", "contract", "quote"}})
}

func TestGate_RequiresReview(t *testing.T) {
	gate := newTestGate()

	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{
			name:     "quote with dollar amount",
			response: "Our standard quote is $500",
			want:     true,
		},
		{
			name:     "benign product answer",
			response: "Solar panels reduce your bill",
			want:     false,
		},
		{
			name:     "case insensitive match",
			response: "PRICE is great",
			want:     true,
		},
		{
			name:     "keyword inside a larger word",
			response: "We discussed contractual terms",
			want:     true,
		},
		{
			name:     "empty response",
			response: "",
			want:     false,
		},
		{
			name:     "cost mid sentence",
			response: "The total cost depends on your roof",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.RequiresReview(tt.response); got != tt.want {
				t.Errorf("RequiresReview(%q) = %v, want %v", tt.response, got, tt.want)
			}
		})
	}
}

func TestGate_IgnoresBlankKeywords(t *testing.T) {
	gate := NewGate(&config.ApprovalConfig{Keywords: []string{" ", "", "price"}})
	if gate.RequiresReview("anything at all") {
		t.Error("blank keywords must not match everything")
	}
	if !gate.RequiresReview("best price around") {
		t.Error("expected price to match")
	}
}
