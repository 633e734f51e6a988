package model

// Client 一个咨询客户，是 Source / Session / ActionItem 的归属单位
type Client struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Company string `gorm:"size:100" json:"company"`
	Email   string `gorm:"size:100" json:"email"`
	Notes   string `gorm:"type:text" json:"notes"`

	// 冗余字段，方便快速鉴权
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	Status string `gorm:"default:'active'" json:"status"` // active, archived
}
