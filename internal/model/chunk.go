package model

import "gorm.io/datatypes"

// Chunk 一个 Source 内容的有界切片，检索的基本单位。
// 向量本体存在 Qdrant，point id = VectorID；这里只存关系型元数据。
type Chunk struct {
	BaseModel
	SourceID uint `gorm:"index;not null" json:"source_id"`

	// 冗余客户范围，方便按客户快速过滤
	ClientID *uint `gorm:"index" json:"client_id"`

	// 源内零基连续下标
	ChunkIndex int `gorm:"not null" json:"chunk_index"`

	Content string `gorm:"type:text;not null" json:"content"`

	// 在父内容中的字符 (rune) 偏移
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`

	// Qdrant point id (uuid)
	VectorID string `gorm:"size:64;index" json:"vector_id"`

	Metadata datatypes.JSON `json:"metadata"`
}
