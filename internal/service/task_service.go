package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"consultantos/internal/data"
	"consultantos/internal/dto"
	"consultantos/internal/model"
)

// TaskService 跟进任务 (ActionItem) 的 CRUD
type TaskService struct {
	Data *data.Data
}

func NewTaskService(d *data.Data) *TaskService {
	return &TaskService{Data: d}
}

// Create 手动快速添加任务；子任务必须和父任务同客户
func (s *TaskService) Create(ctx context.Context, userID uint, req dto.CreateTaskReq) (*model.ActionItem, error) {
	if err := s.checkClientPermission(ctx, req.ClientID, userID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.getOwned(ctx, *req.ParentID, userID)
		if err != nil {
			return nil, err
		}
		if parent.ClientID != req.ClientID {
			return nil, fmt.Errorf("%w: 子任务必须与父任务同客户", ErrInvalid)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	ownerType := req.OwnerType
	if ownerType == "" {
		ownerType = "me"
	}

	item := &model.ActionItem{
		OwnerUserID: userID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusPending,
		Priority:    priority,
		Owner:       req.Owner,
		OwnerType:   ownerType,
		DueDate:     req.DueDate,
		SessionID:   req.SessionID,
		ParentID:    req.ParentID,
		Source:      model.TaskSourceManual,
	}
	if err := s.Data.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// List 列出任务，支持客户/状态过滤
func (s *TaskService) List(ctx context.Context, userID uint, req dto.ListTasksReq) ([]model.ActionItem, error) {
	db := s.Data.DB.WithContext(ctx).Where("owner_user_id = ?", userID)
	if req.ClientID > 0 {
		db = db.Where("client_id = ?", req.ClientID)
	}
	if req.Status != "" {
		db = db.Where("status = ?", req.Status)
	}

	var items []model.ActionItem
	if err := db.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update 编辑任务；状态切到 completed 时盖完成时间戳，切走时清掉
func (s *TaskService) Update(ctx context.Context, userID, id uint, req dto.PatchTaskReq) (*model.ActionItem, error) {
	item, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Owner != nil {
		updates["owner"] = *req.Owner
	}
	if req.OwnerType != nil {
		updates["owner_type"] = *req.OwnerType
	}
	if req.DueDate != nil {
		updates["due_date"] = req.DueDate
	}
	if req.Status != nil && *req.Status != item.Status {
		updates["status"] = *req.Status
		if *req.Status == model.TaskStatusCompleted {
			now := time.Now()
			updates["completed_at"] = &now
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := s.Data.DB.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.getOwned(ctx, id, userID)
}

// Delete 删除任务，级联删掉子任务
func (s *TaskService) Delete(ctx context.Context, userID, id uint) error {
	item, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.Data.DB.WithContext(ctx).
		Where("parent_id = ?", item.ID).Delete(&model.ActionItem{}).Error; err != nil {
		return err
	}
	return s.Data.DB.WithContext(ctx).Delete(item).Error
}

func (s *TaskService) getOwned(ctx context.Context, id, ownerID uint) (*model.ActionItem, error) {
	var item model.ActionItem
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *TaskService) checkClientPermission(ctx context.Context, clientID, userID uint) error {
	var count int64
	if err := s.Data.DB.WithContext(ctx).Model(&model.Client{}).
		Where("id = ? AND owner_id = ?", clientID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
