package rag

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load cl100k_base encoding: " + err.Error())
		}
		tk = enc
	})
	return tk
}

// CountTokens returns the BPE token count of text.
func CountTokens(text string) int {
	return len(getTokenizer().Encode(text, nil, nil))
}

type Chunk struct {
	Text      string
	TokenSize int
	Index     int
}

type ChunkerConfig struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultChunkerConfig sizes chunks for short-context embedding models.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxTokens:     400,
		OverlapTokens: 50,
	}
}

// ChunkText splits a document into sentence-aligned chunks with token
// overlap between neighbours. Sentences longer than MaxTokens are sliced
// at token boundaries.
func ChunkText(text string, cfg ChunkerConfig) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var buf strings.Builder
	bufTokens := 0

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:      strings.TrimSpace(buf.String()),
			TokenSize: bufTokens,
			Index:     len(chunks),
		})
		buf.Reset()
		bufTokens = 0
	}

	for i, sentence := range sentences {
		tokens := CountTokens(sentence)

		// Oversized sentence: flush the buffer and slice it directly.
		if tokens > cfg.MaxTokens {
			flush()
			for _, sub := range sliceByTokens(sentence, cfg.MaxTokens) {
				chunks = append(chunks, Chunk{
					Text:      strings.TrimSpace(sub.Text),
					TokenSize: sub.TokenSize,
					Index:     len(chunks),
				})
			}
			continue
		}

		if bufTokens+tokens > cfg.MaxTokens && buf.Len() > 0 {
			flush()
			overlap := overlapFromSentences(sentences, i, cfg.OverlapTokens)
			buf.WriteString(overlap)
			bufTokens = CountTokens(overlap)
		}

		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
		bufTokens += tokens
	}
	flush()

	return chunks
}

// sliceByTokens encodes the text and cuts the token array into MaxTokens
// sized windows.
func sliceByTokens(text string, maxTokens int) []Chunk {
	enc := getTokenizer()
	ids := enc.Encode(text, nil, nil)

	var out []Chunk
	for start := 0; start < len(ids); start += maxTokens {
		end := start + maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, Chunk{
			Text:      enc.Decode(ids[start:end]),
			TokenSize: end - start,
		})
	}
	return out
}

// overlapFromSentences walks backwards from sentence i collecting up to
// overlapTokens worth of trailing context.
func overlapFromSentences(sentences []string, i, overlapTokens int) string {
	if overlapTokens <= 0 {
		return ""
	}

	var collected []string
	total := 0
	for j := i - 1; j >= 0; j-- {
		tokens := CountTokens(sentences[j])
		if total+tokens > overlapTokens {
			break
		}
		collected = append([]string{sentences[j]}, collected...)
		total += tokens
	}
	return strings.Join(collected, " ")
}

// splitSentences breaks text on terminal punctuation followed by spacing.
// Newlines are also treated as boundaries so headings and list items stay
// separate.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)

		boundary := false
		switch {
		case r == '\n':
			boundary = true
		case r == '.' || r == '!' || r == '?':
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				boundary = true
			}
		}

		if boundary {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
