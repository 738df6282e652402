package mongostore

import (
	"context"

	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	_, err := s.posts.InsertOne(ctx, post)
	return translate(err)
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *Store) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	post.Normalize()
	return &post, nil
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	next := *post
	next.Version++
	next.Normalize()

	if err := guardedReplace(ctx, s.posts, bson.M{"_id": post.ID}, post.Version, next); err != nil {
		return err
	}
	post.Version = next.Version
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.posts.DeleteMany(ctx, bson.M{"user": userID})
	return err
}
