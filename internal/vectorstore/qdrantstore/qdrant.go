// Package qdrantstore 是 vectorstore.Store 的 Qdrant 实现。
package qdrantstore

import (
	"context"
	"fmt"
	"log"

	"github.com/qdrant/go-client/qdrant"

	"consultantos/internal/vectorstore"
)

type Store struct {
	client     *qdrant.Client
	collection string
}

// New 创建 Qdrant 仓库并确保 collection 存在。
// dim 必须与 embedding 模型输出维度一致，否则写入会报错。
func New(host string, port int, collection string, dim int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("无法初始化 Qdrant 客户端: %w", err)
	}

	s := &Store{client: client, collection: collection}
	s.ensureCollection(context.Background(), dim)
	return s, nil
}

// ensureCollection 确保 Collection 存在 (同时作为连接测试)
func (s *Store) ensureCollection(ctx context.Context, dim int) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		// 不 Fatal，向量库挂了不应阻止主程序启动
		log.Printf("⚠️ 无法连接 Qdrant (ListCollections 失败): %v", err)
		return
	}

	for _, c := range collections {
		if c == s.collection {
			log.Printf("✅ Qdrant 连接成功 (Collection '%s' 已存在)", s.collection)
			return
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		log.Printf("❌ 创建 Collection 失败: %v", err)
	} else {
		log.Printf("🎉 Qdrant Collection '%s' 创建成功", s.collection)
	}
}

func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) Upsert(ctx context.Context, points []vectorstore.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}

	upserts := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload := map[string]interface{}{
			"owner_id":          int64(p.OwnerID),
			"source_id":         int64(p.SourceID),
			"client_id":         int64(p.ClientID),
			"chunk_index":       int64(p.ChunkIndex),
			"content":           p.Content,
			"source_name":       p.SourceName,
			"source_created_at": p.SourceCreatedAt,
		}
		upserts = append(upserts, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         upserts,
	})
	return err
}

func (s *Store) Search(ctx context.Context, vector []float32, q vectorstore.Query) ([]vectorstore.ScoredChunk, error) {
	limit := uint64(q.Limit)

	must := []*qdrant.Condition{
		qdrant.NewMatchInt("owner_id", int64(q.OwnerID)),
	}
	if q.ClientID != nil {
		must = append(must, qdrant.NewMatchInt("client_id", int64(*q.ClientID)))
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         &qdrant.Filter{Must: must},
		Limit:          &limit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, err
	}

	results := make([]vectorstore.ScoredChunk, 0, len(points))
	for _, point := range points {
		c := vectorstore.ChunkPoint{ID: point.GetId().GetUuid()}
		if val, ok := point.Payload["owner_id"]; ok {
			c.OwnerID = uint(val.GetIntegerValue())
		}
		if val, ok := point.Payload["source_id"]; ok {
			c.SourceID = uint(val.GetIntegerValue())
		}
		if val, ok := point.Payload["client_id"]; ok {
			c.ClientID = uint(val.GetIntegerValue())
		}
		if val, ok := point.Payload["chunk_index"]; ok {
			c.ChunkIndex = int(val.GetIntegerValue())
		}
		if val, ok := point.Payload["content"]; ok {
			c.Content = val.GetStringValue()
		}
		if val, ok := point.Payload["source_name"]; ok {
			c.SourceName = val.GetStringValue()
		}
		if val, ok := point.Payload["source_created_at"]; ok {
			c.SourceCreatedAt = val.GetIntegerValue()
		}
		results = append(results, vectorstore.ScoredChunk{
			ChunkPoint: c,
			Score:      vectorstore.NormalizeCosine(float64(point.GetScore())),
		})
	}

	// Qdrant 自身按分数排序，这里再套一层统一的同分排序策略
	vectorstore.Rank(results)
	return results, nil
}

func (s *Store) DeleteBySource(ctx context.Context, sourceID uint) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchInt("source_id", int64(sourceID)),
			},
		}),
	})
	return err
}
