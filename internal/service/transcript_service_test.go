package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultantos/internal/dto"
	"consultantos/internal/model"
	"consultantos/internal/rag"
	"consultantos/internal/vectorstore/memory"
)

type transcriptFixture struct {
	svc    *TranscriptService
	queue  *fakeQueue
	user   *model.User
	client *model.Client
}

func newTranscriptFixture(t *testing.T, extractor *rag.Extractor) *transcriptFixture {
	d := newTestData(t)
	queue := &fakeQueue{}
	sources := NewSourceService(d, memory.New(), &fakeEmbedder{dim: 4},
		nil, rag.NewChunker(100, 20), queue)

	user := createTestUser(t, d, "alice")
	client := createTestClient(t, d, user.ID, "Acme")

	return &transcriptFixture{
		svc:    NewTranscriptService(d, sources, extractor),
		queue:  queue,
		user:   user,
		client: client,
	}
}

func TestCreateTranscriptInbox(t *testing.T) {
	f := newTranscriptFixture(t, nil)

	tr, err := f.svc.Create(context.Background(), f.user.ID, dto.CreateTranscriptReq{
		Title:   "周会",
		Content: "记录正文\x00带脏字符",
		Notes:   "几条笔记",
	})

	require.NoError(t, err)
	assert.Equal(t, model.TranscriptStatusInbox, tr.Status)
	assert.Equal(t, "记录正文带脏字符", tr.Content)
	assert.Equal(t, "paste", tr.SourceType)
}

func TestAssignCreatesSessionAndSources(t *testing.T) {
	f := newTranscriptFixture(t, nil)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.user.ID, dto.CreateTranscriptReq{
		Title:           "改版启动会",
		Content:         "会上聊了范围和报价……",
		Notes:           "记得跟进素材",
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	session, err := f.svc.Assign(ctx, f.user.ID, tr.ID, dto.AssignTranscriptReq{
		ClientID: f.client.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, session.ClientID)
	assert.Equal(t, "改版启动会", session.Title)
	assert.Equal(t, 45, session.DurationMinutes)
	require.NotNil(t, session.TranscriptUploadID)
	assert.Equal(t, tr.ID, *session.TranscriptUploadID)

	// 记录 + 笔记各生成一个 Source，挂在客户名下并排队摄取
	var sources []model.Source
	require.NoError(t, f.svc.Data.DB.Order("id asc").Find(&sources).Error)
	require.Len(t, sources, 2)
	assert.Equal(t, model.SourceTypeTranscript, sources[0].Type)
	assert.Equal(t, model.SourceTypeNotes, sources[1].Type)
	for _, s := range sources {
		require.NotNil(t, s.ClientID)
		assert.Equal(t, f.client.ID, *s.ClientID)
		assert.Equal(t, model.SourceStatusPending, s.Status)
		assert.Contains(t, string(s.Metadata), "session_id")
	}
	assert.Len(t, f.queue.payloads, 2)

	// 暂存记录标记 assigned 并回填关联
	var got model.TranscriptUpload
	require.NoError(t, f.svc.Data.DB.First(&got, tr.ID).Error)
	assert.Equal(t, model.TranscriptStatusAssigned, got.Status)
	require.NotNil(t, got.SessionID)
	assert.Equal(t, session.ID, *got.SessionID)
}

func TestAssignWithoutNotesCreatesSingleSource(t *testing.T) {
	f := newTranscriptFixture(t, nil)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.user.ID, dto.CreateTranscriptReq{Content: "只有正文"})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, f.user.ID, tr.ID, dto.AssignTranscriptReq{ClientID: f.client.ID})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.svc.Data.DB.Model(&model.Source{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignTwiceConflicts(t *testing.T) {
	f := newTranscriptFixture(t, nil)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.user.ID, dto.CreateTranscriptReq{Content: "正文"})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, f.user.ID, tr.ID, dto.AssignTranscriptReq{ClientID: f.client.ID})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, f.user.ID, tr.ID, dto.AssignTranscriptReq{ClientID: f.client.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAssignForeignClient(t *testing.T) {
	f := newTranscriptFixture(t, nil)
	ctx := context.Background()

	bob := createTestUser(t, f.svc.Data, "bob")
	bobClient := createTestClient(t, f.svc.Data, bob.ID, "Bob Corp")

	tr, err := f.svc.Create(ctx, f.user.ID, dto.CreateTranscriptReq{Content: "正文"})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, f.user.ID, tr.ID, dto.AssignTranscriptReq{ClientID: bobClient.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	// 指派失败，记录还留在 inbox
	var got model.TranscriptUpload
	require.NoError(t, f.svc.Data.DB.First(&got, tr.ID).Error)
	assert.Equal(t, model.TranscriptStatusInbox, got.Status)
}

func TestExtractInsightsPersistsSummaryAndTasks(t *testing.T) {
	gen := &fakeGenerator{reply: `{"summary": "聊了范围和报价", "action_items": [
  {"title": "发送正式报价", "owner": "我", "owner_type": "me", "priority": "high", "context": "\"周五前发报价\""},
  {"title": "提供品牌素材", "owner": "客户", "owner_type": "client", "priority": "wrong-value", "context": "\"素材下周给\""}
]}`}
	f := newTranscriptFixture(t, rag.NewExtractor(gen))
	ctx := context.Background()

	session := &model.Session{OwnerID: f.user.ID, ClientID: f.client.ID, Title: "启动会"}
	require.NoError(t, f.svc.Data.DB.Create(session).Error)

	require.NoError(t, f.svc.ExtractInsights(ctx, session.ID, f.user.ID, "记录全文……"))

	var got model.Session
	require.NoError(t, f.svc.Data.DB.First(&got, session.ID).Error)
	assert.Equal(t, "聊了范围和报价", got.Summary)

	var items []model.ActionItem
	require.NoError(t, f.svc.Data.DB.Order("id asc").Find(&items).Error)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, model.TaskSourceDetected, it.Source)
		assert.Equal(t, f.client.ID, it.ClientID)
		require.NotNil(t, it.SessionID)
		assert.Equal(t, session.ID, *it.SessionID)
		assert.Equal(t, model.TaskStatusPending, it.Status)
		assert.NotEmpty(t, it.SourceContext)
	}
	assert.Equal(t, "发送正式报价", items[0].Title)
	assert.Equal(t, model.TaskPriorityHigh, items[0].Priority)
	// 非法优先级在抽取层被归一化
	assert.Equal(t, model.TaskPriorityMedium, items[1].Priority)
}

func TestExtractInsightsUnknownSession(t *testing.T) {
	gen := &fakeGenerator{reply: `{"summary": "s", "action_items": []}`}
	f := newTranscriptFixture(t, rag.NewExtractor(gen))

	err := f.svc.ExtractInsights(context.Background(), 999, f.user.ID, "t")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveAndDeleteTranscript(t *testing.T) {
	f := newTranscriptFixture(t, nil)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.user.ID, dto.CreateTranscriptReq{Content: "正文"})
	require.NoError(t, err)

	archived, err := f.svc.Archive(ctx, f.user.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TranscriptStatusArchived, archived.Status)

	require.NoError(t, f.svc.Delete(ctx, f.user.ID, tr.ID))
	list, err := f.svc.List(ctx, f.user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
