package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"

	"etkinlik-bot/internal/vectorindex"
)

const DefaultHashingDim = 384

// Hashing is a local feature-hashing embedder. Word tokens and character
// trigrams are hashed into a signed bag of features and L2-normalized, so
// texts that share words or word stems end up close together. Output is a
// pure function of the input text.
type Hashing struct {
	dim int
}

func NewHashing(dim int) (*Hashing, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("hashing embedder: invalid dimension %d", dim)
	}
	return &Hashing{dim: dim}, nil
}

// NewHashingFromModel parses the model part of "hashing:<dim>".
func NewHashingFromModel(model string) (*Hashing, error) {
	if model == "" {
		return NewHashing(DefaultHashingDim)
	}
	dim, err := strconv.Atoi(model)
	if err != nil {
		return nil, fmt.Errorf("hashing embedder: bad dimension %q: %w", model, err)
	}
	return NewHashing(dim)
}

func (h *Hashing) Dimensions() int { return h.dim }

func (h *Hashing) ModelID() string { return ProviderHashing + ":" + strconv.Itoa(h.dim) }

func (h *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.vector(text), nil
}

func (h *Hashing) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, h.vector(t))
	}
	return out, nil
}

func (h *Hashing) vector(text string) []float32 {
	vec := make([]float32, h.dim)
	text = strings.ToLower(strings.ReplaceAll(text, "İ", "i"))
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h.add(vec, "w:"+tok, 1)
		runes := []rune("#" + tok + "#")
		for i := 0; i+3 <= len(runes); i++ {
			h.add(vec, "t:"+string(runes[i:i+3]), 0.5)
		}
	}
	return vectorindex.Normalize(vec)
}

func (h *Hashing) add(vec []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
