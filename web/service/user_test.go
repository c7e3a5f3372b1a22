package service

import (
	"context"
	"sync"
	"testing"

	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/web/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndCheckUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestDB(t), nil)

	u, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	assert.NotZero(t, u.Id)
	require.True(t, u.HasPassword())
	assert.NotEqual(t, "pw123", *u.Password)

	got, err := users.CheckUser(ctx, "ann@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)

	_, err = users.CheckUser(ctx, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = users.CheckUser(ctx, "bob@x.com", "pw123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_Validation(t *testing.T) {
	users := NewUserService(newTestDB(t), nil)
	tests := []struct {
		name, email, password string
	}{
		{"", "ann@x.com", "pw"},
		{"Ann", "  ", "pw"},
		{"Ann", "ann@x.com", ""},
	}
	for _, tt := range tests {
		_, err := users.Register(context.Background(), tt.name, tt.email, tt.password)
		assert.ErrorIs(t, err, ErrEmptyField)
	}
}

func TestCreateLocal_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestDB(t), nil)

	_, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	_, err = users.Register(ctx, "Another Ann", "ann@x.com", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFindByEmail_TrimsInput(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestDB(t), nil)
	_, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	u, err := users.FindByEmail(ctx, " ann@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
}

func TestFindOrCreateOAuth(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserService(db, nil)

	created, err := users.FindOrCreateOAuth(ctx, "gina@gmail.com", "Gina")
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.False(t, created.HasPassword())

	again, err := users.FindOrCreateOAuth(ctx, "gina@gmail.com", "Gina Renamed")
	require.NoError(t, err)
	assert.Equal(t, created.Id, again.Id)
	assert.Equal(t, "Gina", again.Name)

	// an OAuth-only account cannot sign in with a password
	_, err = users.CheckUser(ctx, "gina@gmail.com", "")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestFindOrCreateOAuth_KeepsLocalAccount(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestDB(t), nil)
	local, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	u, err := users.FindOrCreateOAuth(ctx, "ann@x.com", "Ann G")
	require.NoError(t, err)
	assert.Equal(t, local.Id, u.Id)

	_, err = users.CheckUser(ctx, "ann@x.com", "pw123")
	assert.NoError(t, err)
}

func TestFindOrCreateOAuth_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserService(db, nil)

	const n = 8
	ids := make([]int, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := users.FindOrCreateOAuth(ctx, "race@x.com", "Race")
			errs[i] = err
			if u != nil {
				ids[i] = u.Id
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("email = ?", "race@x.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetUser_Cached(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	c, err := cache.New(ctx, "", "")
	require.NoError(t, err)
	defer c.Close()
	users := NewUserService(db, c)

	u, err := users.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	got, err := users.GetUser(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", got.Email)
	assert.Nil(t, got.Password)

	require.NoError(t, db.Model(&model.User{}).Where("id = ?", u.Id).Update("name", "Annie").Error)
	got, err = users.GetUser(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	require.NoError(t, c.InvalidateUser(ctx, u.Id))
	got, err = users.GetUser(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)

	_, err = users.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
