package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"consultantos/internal/data"
	"consultantos/internal/dto"
	"consultantos/internal/llm"
	"consultantos/internal/model"
	"consultantos/internal/rag"
	"consultantos/internal/vectorstore"
)

// Queue 摄取任务队列 (生产侧)
type Queue interface {
	Push(ctx context.Context, payload []byte) error
}

// IngestTask 一条摄取任务，JSON 序列化后进 Redis
type IngestTask struct {
	TaskID   string `json:"task_id"`
	SourceID uint   `json:"source_id"`
	OwnerID  uint   `json:"owner_id"`
	Force    bool   `json:"force"` // true = 重处理，丢弃旧切块
}

// SourceService 负责 Source 的 CRUD 和整条摄取流水线:
// sanitize -> summarize (best-effort) -> chunk -> embed -> completed/failed
type SourceService struct {
	Data       *data.Data
	Store      vectorstore.Store
	Embedder   llm.Embedder
	Summarizer *rag.Summarizer // nil 表示跳过摘要
	Chunker    *rag.Chunker

	queue Queue
}

func NewSourceService(d *data.Data, store vectorstore.Store, embedder llm.Embedder,
	summarizer *rag.Summarizer, chunker *rag.Chunker, queue Queue) *SourceService {
	return &SourceService{
		Data:       d,
		Store:      store,
		Embedder:   embedder,
		Summarizer: summarizer,
		Chunker:    chunker,
		queue:      queue,
	}
}

// Create 创建来源 (粘贴/抓取类，内容已是纯文本)，状态 pending，入队处理
func (s *SourceService) Create(ctx context.Context, userID uint, req dto.CreateSourceReq) (*model.Source, error) {
	if req.ClientID != nil {
		if err := s.checkClientPermission(ctx, *req.ClientID, userID); err != nil {
			return nil, err
		}
	}

	var metadata datatypes.JSON
	if req.Metadata != nil {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata 格式错误", ErrInvalid)
		}
		metadata = datatypes.JSON(raw)
	}

	source := &model.Source{
		OwnerID:  userID,
		ClientID: req.ClientID,
		Name:     req.Name,
		Type:     req.Type,
		URL:      req.URL,
		FileType: req.FileType,
		Content:  rag.Sanitize(req.Content),
		Status:   model.SourceStatusPending,
		Metadata: metadata,
	}
	if err := s.Data.DB.WithContext(ctx).Create(source).Error; err != nil {
		return nil, err
	}

	s.enqueue(ctx, source, false)
	return source, nil
}

// Upload 上传文件来源：原始文件进 MinIO，抽取出的文本随表单一起提交
func (s *SourceService) Upload(ctx context.Context, userID uint, fileHeader *multipart.FileHeader,
	clientID *uint, content string) (*model.Source, error) {
	if clientID != nil {
		if err := s.checkClientPermission(ctx, *clientID, userID); err != nil {
			return nil, err
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	storagePath, err := s.Data.UploadFile(ctx, src, fileHeader.Size, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	source := &model.Source{
		OwnerID:     userID,
		ClientID:    clientID,
		Name:        fileHeader.Filename,
		Type:        model.SourceTypeDocument,
		FileName:    fileHeader.Filename,
		FileType:    strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), "."),
		FileSize:    fileHeader.Size,
		StoragePath: storagePath,
		Content:     rag.Sanitize(content),
		Status:      model.SourceStatusPending,
	}
	if err := s.Data.DB.WithContext(ctx).Create(source).Error; err != nil {
		return nil, err
	}

	s.enqueue(ctx, source, false)
	return source, nil
}

// Get 按 owner 范围取一个来源，可带切块列表
func (s *SourceService) Get(ctx context.Context, userID, id uint, includeChunks bool) (*dto.SourceResp, error) {
	source, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SourceResp{Source: source}
	if includeChunks {
		if err := s.Data.DB.WithContext(ctx).
			Where("source_id = ?", source.ID).
			Order("chunk_index asc").
			Find(&resp.Chunks).Error; err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// List 按 owner (可选按客户) 列出来源
func (s *SourceService) List(ctx context.Context, userID uint, clientID *uint) ([]model.Source, error) {
	db := s.Data.DB.WithContext(ctx).Where("owner_id = ?", userID)
	if clientID != nil {
		db = db.Where("client_id = ?", *clientID)
	}

	var sources []model.Source
	if err := db.Order("created_at desc").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// Update 编辑摘要 / 手动重置卡死的状态
func (s *SourceService) Update(ctx context.Context, userID, id uint, req dto.PatchSourceReq) (*model.Source, error) {
	source, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "edit_summary":
		if req.Summary == nil {
			return nil, fmt.Errorf("%w: 缺少 summary", ErrInvalid)
		}
		if req.Summary.GeneratedAt.IsZero() {
			req.Summary.GeneratedAt = time.Now()
		}
		raw, err := json.Marshal(req.Summary)
		if err != nil {
			return nil, fmt.Errorf("%w: summary 格式错误", ErrInvalid)
		}
		now := time.Now()
		updates := map[string]interface{}{
			"summary":              datatypes.JSON(raw),
			"summary_generated_at": &now,
			"summary_edited":       true,
		}
		if err := s.Data.DB.WithContext(ctx).Model(source).Updates(updates).Error; err != nil {
			return nil, err
		}

	case "kill":
		// 进程中途挂掉会把来源留在 processing，这里允许人工强制归位
		target := req.TargetStatus
		if target == "" {
			target = model.SourceStatusPending
		}
		updates := map[string]interface{}{
			"status":    target,
			"error_msg": "",
		}
		if err := s.Data.DB.WithContext(ctx).Model(source).Updates(updates).Error; err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: 未知 action %q", ErrInvalid, req.Action)
	}

	return s.getOwned(ctx, id, userID)
}

// Reprocess 强制重跑流水线。
// 关键点：原子地把非 processing 状态打回 pending；
// 正在处理的来源直接拒绝，防止两次 Retry 并发跑同一条流水线。
func (s *SourceService) Reprocess(ctx context.Context, userID, id uint) (*model.Source, error) {
	source, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	tx := s.Data.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ? AND owner_id = ? AND status <> ?", id, userID, model.SourceStatusProcessing).
		Updates(map[string]interface{}{
			"status":    model.SourceStatusPending,
			"error_msg": "",
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: 来源正在处理中", ErrConflict)
	}

	s.enqueue(ctx, source, true)
	return s.getOwned(ctx, id, userID)
}

// Delete 删除来源，级联清掉切块行和向量点
func (s *SourceService) Delete(ctx context.Context, userID, id uint) error {
	source, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.Data.DB.WithContext(ctx).
		Where("source_id = ?", source.ID).Delete(&model.Chunk{}).Error; err != nil {
		return err
	}
	if err := s.Store.DeleteBySource(ctx, source.ID); err != nil {
		// 向量点清理失败不阻塞删除，检索层有 source 过滤兜底
		log.Printf("⚠️ 清理向量点失败 (source=%d): %v", source.ID, err)
	}

	return s.Data.DB.WithContext(ctx).Delete(source).Error
}

// ProcessSource Worker 侧入口：认领 + 跑完整条流水线。
// 返回 nil 表示任务已消费 (包括业务性失败，失败已落库)。
func (s *SourceService) ProcessSource(ctx context.Context, task IngestTask) error {
	source, err := s.getOwned(ctx, task.SourceID, task.OwnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[Ingest] 来源 %d 已不存在，丢弃任务 %s", task.SourceID, task.TaskID)
			return nil
		}
		return err
	}

	// 认领：原子地 pending/failed -> processing。
	// 抢不到说明已有别的任务在跑，直接放弃，保证同一来源只有一条流水线
	claim := s.Data.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ? AND status IN ?", source.ID,
			[]string{model.SourceStatusPending, model.SourceStatusFailed}).
		Updates(map[string]interface{}{
			"status":    model.SourceStatusProcessing,
			"error_msg": "",
		})
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		log.Printf("[Ingest] 来源 %d 状态为 %s，认领失败，跳过任务 %s", source.ID, source.Status, task.TaskID)
		return nil
	}

	// 1. 清洗
	content := rag.Sanitize(source.Content)
	if content != source.Content {
		if err := s.Data.DB.WithContext(ctx).Model(source).
			Update("content", content).Error; err != nil {
			return err
		}
	}

	// 2. 摘要 (best-effort，失败只记日志，不影响流水线)
	if s.Summarizer != nil && content != "" && !source.SummaryEdited {
		s.generateSummary(ctx, source, content)
	}

	// 3. 切块 + 向量化 (load-bearing，失败整体标记 failed)
	chunkCount, err := s.processEmbeddings(ctx, source, content, task.Force)
	if err != nil {
		log.Printf("[Ingest] ❌ 来源 %d 处理失败: %v", source.ID, err)
		return s.setSourceError(ctx, source.ID, err.Error())
	}

	// 4. 完成
	if err := s.Data.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ?", source.ID).
		Updates(map[string]interface{}{
			"status":      model.SourceStatusCompleted,
			"chunk_count": chunkCount,
		}).Error; err != nil {
		return err
	}

	log.Printf("[Ingest] ✅ 来源 %d 处理完成 (%d 块)", source.ID, chunkCount)
	return nil
}

// generateSummary 生成并落库结构化摘要；手动编辑过的摘要不会被覆盖
func (s *SourceService) generateSummary(ctx context.Context, source *model.Source, content string) {
	req := rag.SummarizeRequest{
		Content:    content,
		SourceName: source.Name,
		SourceType: source.Type,
		FileType:   source.FileType,
	}
	if source.ClientID != nil {
		var client model.Client
		if err := s.Data.DB.WithContext(ctx).First(&client, *source.ClientID).Error; err == nil {
			req.ClientName = client.Name
		}
	}

	sum, err := s.Summarizer.Summarize(ctx, req)
	if err != nil {
		log.Printf("[Ingest] ⚠️ 来源 %d 摘要生成失败 (忽略): %v", source.ID, err)
		return
	}

	raw, err := json.Marshal(sum)
	if err != nil {
		log.Printf("[Ingest] ⚠️ 来源 %d 摘要序列化失败 (忽略): %v", source.ID, err)
		return
	}
	now := time.Now()
	if err := s.Data.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ?", source.ID).
		Updates(map[string]interface{}{
			"summary":              datatypes.JSON(raw),
			"summary_generated_at": &now,
			"summary_edited":       false,
		}).Error; err != nil {
		log.Printf("[Ingest] ⚠️ 来源 %d 摘要落库失败 (忽略): %v", source.ID, err)
	}
}

// processEmbeddings 切块向量化。
// force=false 且已有切块时幂等跳过；否则整体替换：
// 先清旧块再写新块，任何一步失败都回收部分写入，不留半套切块。
func (s *SourceService) processEmbeddings(ctx context.Context, source *model.Source,
	content string, force bool) (int, error) {
	var existing int64
	if err := s.Data.DB.WithContext(ctx).Model(&model.Chunk{}).
		Where("source_id = ?", source.ID).Count(&existing).Error; err != nil {
		return 0, err
	}

	if existing > 0 && !force {
		return int(existing), nil
	}

	if existing > 0 {
		if err := s.deleteChunks(ctx, source.ID); err != nil {
			return 0, err
		}
	}

	pieces := s.Chunker.Chunk(content)
	if len(pieces) == 0 {
		// 空内容 = 零切块，合法的 completed 状态
		return 0, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}
	vectors, err := s.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("向量化失败: %v", err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("向量化结果数量不符: 期望 %d 实际 %d", len(pieces), len(vectors))
	}

	var clientScope uint
	if source.ClientID != nil {
		clientScope = *source.ClientID
	}

	chunks := make([]model.Chunk, len(pieces))
	points := make([]vectorstore.ChunkPoint, len(pieces))
	for i, p := range pieces {
		vectorID := uuid.New().String()
		chunks[i] = model.Chunk{
			SourceID:   source.ID,
			ClientID:   source.ClientID,
			ChunkIndex: p.Index,
			Content:    p.Content,
			StartChar:  p.StartChar,
			EndChar:    p.EndChar,
			VectorID:   vectorID,
			Metadata:   source.Metadata,
		}
		points[i] = vectorstore.ChunkPoint{
			ID:              vectorID,
			OwnerID:         source.OwnerID,
			SourceID:        source.ID,
			ClientID:        clientScope,
			ChunkIndex:      p.Index,
			Content:         p.Content,
			SourceName:      source.Name,
			SourceCreatedAt: source.CreatedAt.Unix(),
			Vector:          vectors[i],
		}
	}

	if err := s.Data.DB.WithContext(ctx).CreateInBatches(chunks, 100).Error; err != nil {
		_ = s.deleteChunks(ctx, source.ID)
		return 0, fmt.Errorf("切块落库失败: %v", err)
	}
	if err := s.Store.Upsert(ctx, points); err != nil {
		_ = s.deleteChunks(ctx, source.ID)
		return 0, fmt.Errorf("向量写入失败: %v", err)
	}

	return len(pieces), nil
}

func (s *SourceService) deleteChunks(ctx context.Context, sourceID uint) error {
	if err := s.Data.DB.WithContext(ctx).
		Where("source_id = ?", sourceID).Delete(&model.Chunk{}).Error; err != nil {
		return err
	}
	return s.Store.DeleteBySource(ctx, sourceID)
}

// setSourceError 标记 failed 并持久化错误文本 (本轮处理的终态)
func (s *SourceService) setSourceError(ctx context.Context, sourceID uint, msg string) error {
	return s.Data.DB.WithContext(ctx).Model(&model.Source{}).
		Where("id = ?", sourceID).
		Updates(map[string]interface{}{
			"status":    model.SourceStatusFailed,
			"error_msg": msg,
		}).Error
}

// enqueue 任务入队；入队失败直接把来源标记 failed
func (s *SourceService) enqueue(ctx context.Context, source *model.Source, force bool) {
	task := IngestTask{
		TaskID:   uuid.New().String(),
		SourceID: source.ID,
		OwnerID:  source.OwnerID,
		Force:    force,
	}
	payload, _ := json.Marshal(task)
	if err := s.queue.Push(ctx, payload); err != nil {
		log.Printf("📦 [Ingest] 任务入队失败 (source=%d): %v", source.ID, err)
		_ = s.setSourceError(ctx, source.ID, "任务入队失败: "+err.Error())
		return
	}
	log.Printf("📦 [Ingest] 任务已入队 (source=%d, force=%v)", source.ID, force)
}

func (s *SourceService) getOwned(ctx context.Context, id, ownerID uint) (*model.Source, error) {
	var source model.Source
	err := s.Data.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &source, nil
}

func (s *SourceService) checkClientPermission(ctx context.Context, clientID, userID uint) error {
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
