package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, users *UserService) (ann, bob int) {
	t.Helper()
	ctx := context.Background()
	a, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	b, err := users.Register(ctx, "Bob", "bob@x.com", "pw456")
	require.NoError(t, err)
	return a.Id, b.Id
}

func TestTaskService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ann, bob := seedUsers(t, NewUserService(db, nil))
	tasks := NewTaskService(db)

	for _, text := range []string{"Buy milk", "Walk dog", "Pay rent"} {
		_, err := tasks.Create(ctx, ann, text)
		require.NoError(t, err)
	}
	_, err := tasks.Create(ctx, bob, "Bob's task")
	require.NoError(t, err)

	list, err := tasks.ListForUser(ctx, ann)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Pay rent", list[0].Text)
	assert.Equal(t, "Buy milk", list[2].Text)
	for _, task := range list {
		assert.Equal(t, ann, task.UserId)
	}

	list, err = tasks.ListForUser(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskService_EmptyText(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ann, _ := seedUsers(t, NewUserService(db, nil))
	tasks := NewTaskService(db)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := tasks.Create(ctx, ann, text)
		assert.ErrorIs(t, err, ErrEmptyTask)
	}

	task, err := tasks.Create(ctx, ann, "Buy milk")
	require.NoError(t, err)
	assert.ErrorIs(t, tasks.Update(ctx, ann, task.Id, " "), ErrEmptyTask)

	got, err := tasks.GetByID(ctx, ann, task.Id)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Text)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ann, _ := seedUsers(t, NewUserService(db, nil))
	tasks := NewTaskService(db)

	task, err := tasks.Create(ctx, ann, "Buy milk")
	require.NoError(t, err)

	require.NoError(t, tasks.Update(ctx, ann, task.Id, "Buy oat milk"))
	require.NoError(t, tasks.Update(ctx, ann, task.Id, "Buy oat milk"))

	got, err := tasks.GetByID(ctx, ann, task.Id)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Text)

	assert.ErrorIs(t, tasks.Update(ctx, ann, 999, "x"), ErrTaskNotFound)
}

func TestTaskService_Ownership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ann, bob := seedUsers(t, NewUserService(db, nil))
	tasks := NewTaskService(db)

	task, err := tasks.Create(ctx, ann, "Ann's secret")
	require.NoError(t, err)

	_, err = tasks.GetByID(ctx, bob, task.Id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Update(ctx, bob, task.Id, "hijacked"), ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, bob, task.Id), ErrTaskNotFound)

	got, err := tasks.GetByID(ctx, ann, task.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ann's secret", got.Text)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ann, _ := seedUsers(t, NewUserService(db, nil))
	tasks := NewTaskService(db)

	task, err := tasks.Create(ctx, ann, "Buy milk")
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(ctx, ann, task.Id))
	assert.ErrorIs(t, tasks.Delete(ctx, ann, task.Id), ErrTaskNotFound)

	list, err := tasks.ListForUser(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, list)
}
