package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultantos/internal/dto"
	"consultantos/internal/model"
)

func newTaskFixture(t *testing.T) (*TaskService, *model.User, *model.Client) {
	d := newTestData(t)
	user := createTestUser(t, d, "alice")
	client := createTestClient(t, d, user.ID, "Acme")
	return NewTaskService(d), user, client
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, user, client := newTaskFixture(t)

	item, err := svc.Create(context.Background(), user.ID, dto.CreateTaskReq{
		ClientID: client.ID,
		Title:    "发送报价单",
	})

	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, item.Status)
	assert.Equal(t, model.TaskPriorityMedium, item.Priority)
	assert.Equal(t, "me", item.OwnerType)
	assert.Equal(t, model.TaskSourceManual, item.Source)
	assert.Nil(t, item.CompletedAt)
}

func TestCreateTaskForeignClient(t *testing.T) {
	svc, user, _ := newTaskFixture(t)

	bob := createTestUser(t, svc.Data, "bob")
	bobClient := createTestClient(t, svc.Data, bob.ID, "Bob Corp")

	_, err := svc.Create(context.Background(), user.ID, dto.CreateTaskReq{
		ClientID: bobClient.ID,
		Title:    "x",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSubtaskSameClientOnly(t *testing.T) {
	svc, user, client := newTaskFixture(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: client.ID, Title: "改版项目收尾",
	})
	require.NoError(t, err)

	// 同客户的子任务 OK
	child, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: client.ID, Title: "交接文档", ParentID: &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentID)

	// 跨客户的子任务拒绝
	other := createTestClient(t, svc.Data, user.ID, "Other Co")
	_, err = svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: other.ID, Title: "bad", ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateTaskStampsCompletedAt(t *testing.T) {
	svc, user, client := newTaskFixture(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: client.ID, Title: "t",
	})
	require.NoError(t, err)

	done := model.TaskStatusCompleted
	got, err := svc.Update(ctx, user.ID, item.ID, dto.PatchTaskReq{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, time.Now(), *got.CompletedAt, time.Minute)

	// 切回进行中，完成时间清掉
	reopen := model.TaskStatusInProgress
	got, err = svc.Update(ctx, user.ID, item.ID, dto.PatchTaskReq{Status: &reopen})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateTaskPartialFields(t *testing.T) {
	svc, user, client := newTaskFixture(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: client.ID, Title: "原标题", Priority: model.TaskPriorityLow,
	})
	require.NoError(t, err)

	high := model.TaskPriorityHigh
	got, err := svc.Update(ctx, user.ID, item.ID, dto.PatchTaskReq{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, model.TaskPriorityHigh, got.Priority)
	// 没传的字段不动
	assert.Equal(t, "原标题", got.Title)
}

func TestListTasksFilters(t *testing.T) {
	svc, user, client := newTaskFixture(t)
	ctx := context.Background()
	other := createTestClient(t, svc.Data, user.ID, "Other Co")

	_, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{ClientID: client.ID, Title: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{ClientID: client.ID, Title: "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, dto.CreateTaskReq{ClientID: other.ID, Title: "c"})
	require.NoError(t, err)

	done := model.TaskStatusCompleted
	_, err = svc.Update(ctx, user.ID, b.ID, dto.PatchTaskReq{Status: &done})
	require.NoError(t, err)

	all, err := svc.List(ctx, user.ID, dto.ListTasksReq{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := svc.List(ctx, user.ID, dto.ListTasksReq{ClientID: client.ID})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	completed, err := svc.List(ctx, user.ID, dto.ListTasksReq{
		ClientID: client.ID, Status: model.TaskStatusCompleted,
	})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "b", completed[0].Title)
}

func TestDeleteTaskCascadesChildren(t *testing.T) {
	svc, user, client := newTaskFixture(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, user.ID, dto.CreateTaskReq{ClientID: client.ID, Title: "p"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, dto.CreateTaskReq{
		ClientID: client.ID, Title: "child", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID, parent.ID))

	left, err := svc.List(ctx, user.ID, dto.ListTasksReq{})
	require.NoError(t, err)
	assert.Empty(t, left)
}
