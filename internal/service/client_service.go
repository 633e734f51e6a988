package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"consultantos/internal/data"
	"consultantos/internal/dto"
	"consultantos/internal/model"
)

// ClientService 客户管理
type ClientService struct {
	Data *data.Data
}

func NewClientService(d *data.Data) *ClientService {
	return &ClientService{Data: d}
}

func (s *ClientService) Create(ctx context.Context, userID uint, req dto.CreateClientReq) (*model.Client, error) {
	client := &model.Client{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Notes:   req.Notes,
		OwnerID: userID,
		Status:  "active",
	}
	if err := s.Data.DB.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, userID uint) ([]model.Client, error) {
	var clients []model.Client
	err := s.Data.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, userID, id uint) (*model.Client, error) {
	var client model.Client
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}
