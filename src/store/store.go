// Package store defines the document store used by the controllers and the
// helpers shared by its drivers.
package store

import (
	"context"
	"errors"

	"github.com/theleywin/devconnector/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
	ErrStale     = errors.New("store: document version changed")
)

// MaxMutateAttempts bounds how often a read-modify-write is replayed after a stale save
const MaxMutateAttempts = 3

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	// ListPosts returns every post, newest first
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// SavePost replaces the post if its stored version still equals post.Version,
	// then bumps post.Version. A changed version yields ErrStale.
	SavePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) error
}

type ProfileRepository interface {
	// CreateProfile fails with ErrDuplicate when the user already has a profile
	CreateProfile(ctx context.Context, profile *models.Profile) error
	FindProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	// SaveProfile has the same version contract as SavePost
	SaveProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error
}

type Store interface {
	UserRepository
	PostRepository
	ProfileRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// PostMutator is the part of PostRepository a read-modify-write needs
type PostMutator interface {
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	SavePost(ctx context.Context, post *models.Post) error
}

type ProfileMutator interface {
	FindProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
}

// MutatePost loads the post, applies fn and saves it. A stale save is retried
// against a fresh copy; an error from fn aborts without saving.
func MutatePost(ctx context.Context, posts PostMutator, id primitive.ObjectID, fn func(*models.Post) error) (*models.Post, error) {
	for attempt := 0; attempt < MaxMutateAttempts; attempt++ {
		post, err := posts.FindPostByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(post); err != nil {
			return nil, err
		}
		err = posts.SavePost(ctx, post)
		if errors.Is(err, ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return post, nil
	}
	return nil, ErrStale
}

// MutateProfile is MutatePost for the profile owned by userID
func MutateProfile(ctx context.Context, profiles ProfileMutator, userID primitive.ObjectID, fn func(*models.Profile) error) (*models.Profile, error) {
	for attempt := 0; attempt < MaxMutateAttempts; attempt++ {
		profile, err := profiles.FindProfileByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := fn(profile); err != nil {
			return nil, err
		}
		err = profiles.SaveProfile(ctx, profile)
		if errors.Is(err, ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return profile, nil
	}
	return nil, ErrStale
}
