package dto

// SearchResult 一条检索命中，Score 归一化到 [0,1]
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	SourceID   uint    `json:"source_id"`
	SourceName string  `json:"source_name"`
	ClientID   uint    `json:"client_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}
