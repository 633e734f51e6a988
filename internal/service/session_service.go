package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"consultantos/internal/data"
	"consultantos/internal/model"
)

// SessionService 会话只读接口 (会话由 TranscriptService.Assign 创建)
type SessionService struct {
	Data *data.Data
}

func NewSessionService(d *data.Data) *SessionService {
	return &SessionService{Data: d}
}

func (s *SessionService) List(ctx context.Context, userID uint, clientID *uint) ([]model.Session, error) {
	db := s.Data.DB.WithContext(ctx).Where("owner_id = ?", userID)
	if clientID != nil {
		db = db.Where("client_id = ?", *clientID)
	}

	var sessions []model.Session
	if err := db.Order("created_at desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, userID, id uint) (*model.Session, error) {
	var session model.Session
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}
