package vectorstore

import (
	"context"
	"sort"
)

// ChunkPoint 一个待写入向量库的切块
type ChunkPoint struct {
	ID              string // uuid，对应 model.Chunk.VectorID
	OwnerID         uint
	SourceID        uint
	ClientID        uint // 0 = 全局资料
	ChunkIndex      int
	Content         string
	SourceName      string
	SourceCreatedAt int64 // unix 秒，用于同分排序
	Vector          []float32
}

// ScoredChunk 检索结果，Score 已归一化到 [0,1]
type ScoredChunk struct {
	ChunkPoint
	Score float64
}

// Query 检索条件；ClientID 为 nil 表示不按客户过滤
type Query struct {
	OwnerID  uint
	ClientID *uint
	Limit    int
}

// Store 切块向量仓库。索引和查询必须使用同一 embedding 模型。
type Store interface {
	Upsert(ctx context.Context, points []ChunkPoint) error
	Search(ctx context.Context, vector []float32, q Query) ([]ScoredChunk, error)
	DeleteBySource(ctx context.Context, sourceID uint) error
}

// NormalizeCosine 把余弦相似度 [-1,1] 归一化到 [0,1]
func NormalizeCosine(score float64) float64 {
	n := (score + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// Rank 统一排序策略: 分数降序，同分按来源新旧 (新者优先)，
// 再按 point id 兜底，保证两次检索顺序完全一致
func Rank(results []ScoredChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].SourceCreatedAt != results[j].SourceCreatedAt {
			return results[i].SourceCreatedAt > results[j].SourceCreatedAt
		}
		return results[i].ID < results[j].ID
	})
}
