package pgstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// openTestStore connects to DATABASE_URL and empties the tables; the tests
// are skipped when no database is configured
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	_, err = s.pool.Exec(ctx, "TRUNCATE users, posts, profiles")
	require.NoError(t, err)
	return s
}

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation})), store.ErrDuplicate)

	var pgErr *pgconn.PgError
	fk := translate(&pgconn.PgError{Code: "23503"})
	assert.NotErrorIs(t, fk, store.ErrDuplicate)
	require.ErrorAs(t, fk, &pgErr)
	assert.Equal(t, "23503", pgErr.Code)
	assert.Equal(t, other, translate(other))
}

func createUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Name: "ana", Email: email, Password: "hash", Date: models.Now()}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestDuplicateEmail(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "ana@example.com")

	dup := &models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Date: models.Now()}
	assert.ErrorIs(t, s.CreateUser(context.Background(), dup), store.ErrDuplicate)
}

func TestSavePostIsVersionGuarded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author := createUser(t, s, "ana@example.com")
	post := models.NewPost(author, "hello")
	require.NoError(t, s.CreatePost(ctx, post))

	first, err := s.FindPostByID(ctx, post.ID)
	require.NoError(t, err)
	second, err := s.FindPostByID(ctx, post.ID)
	require.NoError(t, err)

	first.AddLike(primitive.NewObjectID())
	require.NoError(t, s.SavePost(ctx, first))
	assert.Equal(t, 1, first.Version)

	assert.ErrorIs(t, s.SavePost(ctx, second), store.ErrStale)

	stored, err := s.FindPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, 1)
	assert.Equal(t, 1, stored.Version)

	missing := models.NewPost(author, "never stored")
	assert.ErrorIs(t, s.SavePost(ctx, missing), store.ErrNotFound)
}

func TestProfiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	user := createUser(t, s, "ana@example.com")

	profile := models.NewProfile(user.ID)
	profile.Status = "Developer"
	require.NoError(t, s.CreateProfile(ctx, profile))
	assert.ErrorIs(t, s.CreateProfile(ctx, models.NewProfile(user.ID)), store.ErrDuplicate)

	_, err := s.FindProfileByUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteProfileByUser(ctx, user.ID))
	assert.ErrorIs(t, s.DeleteProfileByUser(ctx, user.ID), store.ErrNotFound)
}
