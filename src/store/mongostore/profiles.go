package mongostore

import (
	"context"

	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.Normalize()
	_, err := s.profiles.InsertOne(ctx, profile)
	return translate(err)
}

func (s *Store) FindProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.profiles.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		return nil, translate(err)
	}
	profile.Normalize()
	return &profile, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.profiles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	next := *profile
	next.Version++
	next.Normalize()

	if err := guardedReplace(ctx, s.profiles, bson.M{"_id": profile.ID}, profile.Version, next); err != nil {
		return err
	}
	profile.Version = next.Version
	return nil
}

func (s *Store) DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.profiles.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
