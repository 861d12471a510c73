package database

import (
	"context"
	"testing"

	"tutomatics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(username, email, role string) *models.User {
	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Status:       models.UserStatusPending,
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := testUser("alice", "Alice@Example.org", models.RoleStudent)
	require.NoError(t, db.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	// Emails are stored lowercased.
	stored, err := db.GetUserByEmail(ctx, "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", stored.Email)
	assert.Equal(t, "alice", stored.Username)
}

func TestCreateUser_Duplicates(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, testUser("alice", "alice@example.org", models.RoleStudent)))

	err := db.CreateUser(ctx, testUser("bob", "alice@example.org", models.RoleStudent))
	assert.ErrorIs(t, err, ErrEmailTaken)

	err = db.CreateUser(ctx, testUser("alice", "other@example.org", models.RoleStudent))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetUserByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetTutor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, err := db.GetTutor(ctx)
	assert.ErrorIs(t, err, ErrNoTutorAvailable)

	require.NoError(t, db.CreateUser(ctx, testUser("student", "s@example.org", models.RoleStudent)))
	_, err = db.GetTutor(ctx)
	assert.ErrorIs(t, err, ErrNoTutorAvailable)

	admin := testUser("tutor", "t@example.org", models.RoleAdmin)
	require.NoError(t, db.CreateUser(ctx, admin))
	second := testUser("tutor2", "t2@example.org", models.RoleAdmin)
	require.NoError(t, db.CreateUser(ctx, second))

	// The first admin by id wins.
	tutor, err := db.GetTutor(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, tutor.ID)
	assert.True(t, tutor.IsAdmin())
}

func TestApproveUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := testUser("alice", "alice@example.org", models.RoleStudent)
	require.NoError(t, db.CreateUser(ctx, user))

	require.NoError(t, db.ApproveUser(ctx, user.ID))

	stored, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, stored.Status)

	// Not pending anymore.
	assert.ErrorIs(t, db.ApproveUser(ctx, user.ID), ErrUserNotFound)
	assert.ErrorIs(t, db.ApproveUser(ctx, 99999), ErrUserNotFound)
}

func TestGetUsersByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	a := testUser("alice", "alice@example.org", models.RoleStudent)
	b := testUser("bob", "bob@example.org", models.RoleStudent)
	require.NoError(t, db.CreateUser(ctx, a))
	require.NoError(t, db.CreateUser(ctx, b))
	require.NoError(t, db.ApproveUser(ctx, a.ID))

	pending, err := db.GetUsersByStatus(ctx, models.UserStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Username)

	approved, err := db.GetUsersByStatus(ctx, models.UserStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "alice", approved[0].Username)
}

func TestDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := testUser("alice", "alice@example.org", models.RoleStudent)
	require.NoError(t, db.CreateUser(ctx, user))

	require.NoError(t, db.DeleteUser(ctx, user.ID))

	_, err := db.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, db.DeleteUser(ctx, user.ID), ErrUserNotFound)
}
