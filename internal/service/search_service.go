package service

import (
	"context"
	"fmt"
	"strings"

	"consultantos/internal/dto"
	"consultantos/internal/llm"
	"consultantos/internal/vectorstore"
)

const defaultSearchLimit = 5

// SearchService 相似检索：query 用与索引同一个 embedding 模型向量化，
// 再到向量库里取 top-k
type SearchService struct {
	Store    vectorstore.Store
	Embedder llm.Embedder
}

func NewSearchService(store vectorstore.Store, embedder llm.Embedder) *SearchService {
	return &SearchService{Store: store, Embedder: embedder}
}

// Search 检索；clientID 可选，限定客户范围；无命中返回空列表
func (s *SearchService) Search(ctx context.Context, userID uint, query string,
	clientID *uint, limit int) ([]dto.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query 不能为空", ErrInvalid)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询向量化失败: %v", err)
	}

	hits, err := s.Store.Search(ctx, vector, vectorstore.Query{
		OwnerID:  userID,
		ClientID: clientID,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, dto.SearchResult{
			ChunkID:    h.ID,
			SourceID:   h.SourceID,
			SourceName: h.SourceName,
			ClientID:   h.ClientID,
			ChunkIndex: h.ChunkIndex,
			Content:    h.Content,
			Score:      h.Score,
		})
	}
	return results, nil
}
