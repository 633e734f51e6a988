package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"consultantos/internal/data"
	"consultantos/internal/dto"
	"consultantos/internal/model"
	"consultantos/internal/rag"
)

// TranscriptService 管理会话记录暂存区 (inbox)，
// 指派时生成 Session + Source 并触发洞察抽取
type TranscriptService struct {
	Data      *data.Data
	Sources   *SourceService
	Extractor *rag.Extractor // nil 表示不做洞察抽取
}

func NewTranscriptService(d *data.Data, sources *SourceService, extractor *rag.Extractor) *TranscriptService {
	return &TranscriptService{Data: d, Sources: sources, Extractor: extractor}
}

// Create 粘贴/上传一条记录进 inbox
func (s *TranscriptService) Create(ctx context.Context, userID uint, req dto.CreateTranscriptReq) (*model.TranscriptUpload, error) {
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = "paste"
	}

	t := &model.TranscriptUpload{
		OwnerID:         userID,
		Title:           req.Title,
		Content:         rag.Sanitize(req.Content),
		SessionDate:     req.SessionDate,
		DurationMinutes: req.DurationMinutes,
		Notes:           rag.Sanitize(req.Notes),
		SourceType:      sourceType,
		Status:          model.TranscriptStatusInbox,
	}
	if err := s.Data.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// List 列出暂存记录，可按状态过滤
func (s *TranscriptService) List(ctx context.Context, userID uint, status string) ([]model.TranscriptUpload, error) {
	db := s.Data.DB.WithContext(ctx).Where("owner_id = ?", userID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var list []model.TranscriptUpload
	if err := db.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Archive 归档 (任何阶段都可以)
func (s *TranscriptService) Archive(ctx context.Context, userID, id uint) (*model.TranscriptUpload, error) {
	t, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Data.DB.WithContext(ctx).Model(t).
		Update("status", model.TranscriptStatusArchived).Error; err != nil {
		return nil, err
	}
	return s.getOwned(ctx, id, userID)
}

// Delete 删除暂存记录 (已生成的 Session/Source 不受影响)
func (s *TranscriptService) Delete(ctx context.Context, userID, id uint) error {
	t, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.Data.DB.WithContext(ctx).Delete(t).Error
}

// Assign 把 inbox 记录指派给客户：
// 创建 Session + 记录 Source (+ 笔记 Source)，两者入摄取队列，
// 然后异步做洞察抽取 (best-effort，失败不影响指派结果)
func (s *TranscriptService) Assign(ctx context.Context, userID, id uint, req dto.AssignTranscriptReq) (*model.Session, error) {
	t, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TranscriptStatusInbox {
		return nil, fmt.Errorf("%w: 该记录已被指派或归档", ErrConflict)
	}
	if err := s.Sources.checkClientPermission(ctx, req.ClientID, userID); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = t.Title
	}
	if title == "" {
		title = "客户会话 " + time.Now().Format("2006-01-02")
	}
	sessionDate := req.SessionDate
	if sessionDate == nil {
		sessionDate = t.SessionDate
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = t.DurationMinutes
	}

	// 1. 创建 Session
	session := &model.Session{
		OwnerID:            userID,
		ClientID:           req.ClientID,
		Title:              title,
		Date:               sessionDate,
		DurationMinutes:    duration,
		Notes:              t.Notes,
		TranscriptUploadID: &t.ID,
	}
	if err := s.Data.DB.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}

	// 2. 创建记录 Source (+ 笔记 Source)，进摄取流水线
	clientID := req.ClientID
	metadata := map[string]interface{}{"session_id": session.ID}

	if _, err := s.Sources.Create(ctx, userID, dto.CreateSourceReq{
		ClientID: &clientID,
		Name:     title + " — 会话记录",
		Type:     model.SourceTypeTranscript,
		Content:  t.Content,
		Metadata: metadata,
	}); err != nil {
		return nil, err
	}
	if t.Notes != "" {
		if _, err := s.Sources.Create(ctx, userID, dto.CreateSourceReq{
			ClientID: &clientID,
			Name:     title + " — 会话笔记",
			Type:     model.SourceTypeNotes,
			Content:  t.Notes,
			Metadata: metadata,
		}); err != nil {
			return nil, err
		}
	}

	// 3. 暂存记录标记 assigned
	if err := s.Data.DB.WithContext(ctx).Model(t).Updates(map[string]interface{}{
		"status":     model.TranscriptStatusAssigned,
		"client_id":  &req.ClientID,
		"session_id": &session.ID,
	}).Error; err != nil {
		return nil, err
	}

	// 4. 异步洞察抽取
	if s.Extractor != nil {
		sessionID := session.ID
		transcript := t.Content
		go func() {
			if err := s.ExtractInsights(context.Background(), sessionID, userID, transcript); err != nil {
				log.Printf("⚠️ [Insights] 会话 %d 洞察抽取失败 (指派不受影响): %v", sessionID, err)
			}
		}()
	}

	return session, nil
}

// ExtractInsights 对会话记录做摘要 + 待办抽取并落库。
// 摘要写到 Session，待办写成 source="detected" 的 ActionItem
func (s *TranscriptService) ExtractInsights(ctx context.Context, sessionID, userID uint, transcript string) error {
	if s.Extractor == nil {
		return nil
	}

	var session model.Session
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	ins, err := s.Extractor.Extract(ctx, transcript, session.Title)
	if err != nil {
		return err
	}

	if ins.Summary != "" {
		if err := s.Data.DB.WithContext(ctx).Model(&session).
			Update("summary", ins.Summary).Error; err != nil {
			return err
		}
	}

	for _, it := range ins.ActionItems {
		item := model.ActionItem{
			OwnerUserID:   userID,
			ClientID:      session.ClientID,
			Title:         it.Title,
			Description:   it.Description,
			Status:        model.TaskStatusPending,
			Priority:      it.Priority,
			Owner:         it.Owner,
			OwnerType:     it.OwnerType,
			SessionID:     &session.ID,
			Source:        model.TaskSourceDetected,
			SourceContext: it.Context,
		}
		if err := s.Data.DB.WithContext(ctx).Create(&item).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ [Insights] 会话 %d 抽取完成 (%d 条待办)", sessionID, len(ins.ActionItems))
	return nil
}

func (s *TranscriptService) getOwned(ctx context.Context, id, ownerID uint) (*model.TranscriptUpload, error) {
	var t model.TranscriptUpload
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
