// Package vectorindex provides exact nearest-neighbour search over float32
// vectors using squared Euclidean distance.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
)

// Neighbor is a search hit. ID is the insertion position of the vector.
type Neighbor struct {
	ID       int
	Distance float32
}

// FlatL2 is a brute-force index. It is not safe for concurrent mutation;
// Search may run concurrently once building is finished.
type FlatL2 struct {
	dim     int
	vectors [][]float32
}

func NewFlatL2(dim int) *FlatL2 {
	return &FlatL2{dim: dim}
}

func (x *FlatL2) Dim() int { return x.dim }

func (x *FlatL2) Len() int { return len(x.vectors) }

// Add appends vectors. Every vector must have the index dimension.
func (x *FlatL2) Add(vecs ...[]float32) error {
	for i, v := range vecs {
		if len(v) != x.dim {
			return fmt.Errorf("vector %d: dimension %d, index expects %d", i, len(v), x.dim)
		}
	}
	for _, v := range vecs {
		cp := make([]float32, len(v))
		copy(cp, v)
		x.vectors = append(x.vectors, cp)
	}
	return nil
}

// Search returns up to k neighbours of q ordered by ascending distance.
// Ties keep insertion order.
func (x *FlatL2) Search(q []float32, k int) ([]Neighbor, error) {
	if len(q) != x.dim {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(q), x.dim)
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}
	if k <= 0 {
		return nil, nil
	}
	all := make([]Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		all[i] = Neighbor{ID: i, Distance: SquaredL2(q, v)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Distance < all[j].Distance })
	return all[:k], nil
}

func SquaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}

// Normalize scales vec to unit length in place. Zero vectors are left as is.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}
