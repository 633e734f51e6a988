package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"consultantos/internal/data"
	"consultantos/internal/model"
)

// newTestData 内存 sqlite，每个测试用例一套独立 schema
func newTestData(t *testing.T) *data.Data {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.AutoMigrate(db))
	return &data.Data{DB: db}
}

func createTestUser(t *testing.T, d *data.Data, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "x", Role: "user"}
	require.NoError(t, d.DB.Create(u).Error)
	return u
}

func createTestClient(t *testing.T, d *data.Data, ownerID uint, name string) *model.Client {
	t.Helper()
	c := &model.Client{OwnerID: ownerID, Name: name, Status: "active"}
	require.NoError(t, d.DB.Create(c).Error)
	return c
}

// fakeEmbedder 确定性向量：同样文本永远同样向量
type fakeEmbedder struct {
	dim     int
	failErr error
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	dim := f.dim
	if dim == 0 {
		dim = 4
	}
	vec := make([]float32, dim)
	for i, r := range text {
		vec[i%dim] += float32(r%97) / 97
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int {
	if f.dim == 0 {
		return 4
	}
	return f.dim
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

// fakeQueue 收集入队任务，不真的消费
type fakeQueue struct {
	payloads [][]byte
	failErr  error
}

func (q *fakeQueue) Push(ctx context.Context, payload []byte) error {
	if q.failErr != nil {
		return q.failErr
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

// fakeGenerator 固定回复的 LLM
type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
