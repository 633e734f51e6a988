// Package memory 提供内存版向量仓库，用于测试和无 Qdrant 的本地开发。
package memory

import (
	"context"
	"math"
	"sync"

	"consultantos/internal/vectorstore"
)

type Store struct {
	mu     sync.RWMutex
	points map[string]vectorstore.ChunkPoint
}

func New() *Store {
	return &Store{points: make(map[string]vectorstore.ChunkPoint)}
}

func (s *Store) Upsert(ctx context.Context, points []vectorstore.ChunkPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, q vectorstore.Query) ([]vectorstore.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []vectorstore.ScoredChunk
	for _, p := range s.points {
		if q.OwnerID != 0 && p.OwnerID != q.OwnerID {
			continue
		}
		if q.ClientID != nil && p.ClientID != *q.ClientID {
			continue
		}
		results = append(results, vectorstore.ScoredChunk{
			ChunkPoint: p,
			Score:      vectorstore.NormalizeCosine(cosine(vector, p.Vector)),
		})
	}

	vectorstore.Rank(results)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *Store) DeleteBySource(ctx context.Context, sourceID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.SourceID == sourceID {
			delete(s.points, id)
		}
	}
	return nil
}

// Len 当前点数 (测试用)
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
