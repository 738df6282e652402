// Package sqlstore implements store.Store on SQLite through GORM. Embedded
// likes, comments, experience and education live in JSON columns so a row
// carries the same document shape the Mongo driver stores.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// gormWriter routes GORM's log lines through the app logger
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	log.Warnf(format, args...)
}

// newLogger reports slow queries and failures; expected misses stay quiet
func newLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to the SQLite database at dsn and migrates the schema
func Open(dsn string) (*Store, error) {
	return open(dsn, gormWriter{})
}

func open(dsn string, w logger.Writer) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(w),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite has one writer; a single connection also keeps in-memory databases alive
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA busy_timeout=3000").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	if err := db.AutoMigrate(&userRecord{}, &postRecord{}, &profileRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	log.Infof("Connected to SQLite: %s", dsn)
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}

// guardedUpdate writes the selected columns when the row still has the given
// version; zero rows affected means either a stale version or a missing row
func (s *Store) guardedUpdate(ctx context.Context, model any, id string, version int, columns []string, values any) error {
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version).
		Select(columns).
		Updates(values)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrStale
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	rec := fromUser(user)
	return translate(s.db.WithContext(ctx).Create(&rec).Error)
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id.Hex()).Error; err != nil {
		return nil, translate(err)
	}
	user := rec.toModel()
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	user := rec.toModel()
	return &user, nil
}

func (s *Store) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	hexIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		hexIDs = append(hexIDs, id.Hex())
	}

	var recs []userRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", hexIDs).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		users = append(users, rec.toModel())
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res := s.db.WithContext(ctx).Delete(&userRecord{}, "id = ?", id.Hex())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Posts

var postColumns = []string{"text", "name", "avatar", "likes", "comments", "version"}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	rec := fromPost(post)
	return translate(s.db.WithContext(ctx).Create(&rec).Error)
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	var recs []postRecord
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&recs).Error; err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(recs))
	for _, rec := range recs {
		posts = append(posts, rec.toModel())
	}
	return posts, nil
}

func (s *Store) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var rec postRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id.Hex()).Error; err != nil {
		return nil, translate(err)
	}
	post := rec.toModel()
	return &post, nil
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	rec := fromPost(post)
	rec.Version = post.Version + 1

	if err := s.guardedUpdate(ctx, &postRecord{}, rec.ID, post.Version, postColumns, &rec); err != nil {
		return err
	}
	post.Version = rec.Version
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res := s.db.WithContext(ctx).Delete(&postRecord{}, "id = ?", id.Hex())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) error {
	return s.db.WithContext(ctx).Delete(&postRecord{}, "user_id = ?", userID.Hex()).Error
}

// Profiles

var profileColumns = []string{
	"company", "website", "location", "status", "skills", "bio",
	"github_username", "experience", "education", "social", "version",
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.Normalize()
	rec := fromProfile(profile)
	return translate(s.db.WithContext(ctx).Create(&rec).Error)
}

func (s *Store) FindProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var rec profileRecord
	if err := s.db.WithContext(ctx).First(&rec, "user_id = ?", userID.Hex()).Error; err != nil {
		return nil, translate(err)
	}
	profile := rec.toModel()
	return &profile, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var recs []profileRecord
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&recs).Error; err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(recs))
	for _, rec := range recs {
		profiles = append(profiles, rec.toModel())
	}
	return profiles, nil
}

func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	profile.Normalize()
	rec := fromProfile(profile)
	rec.Version = profile.Version + 1

	if err := s.guardedUpdate(ctx, &profileRecord{}, rec.ID, profile.Version, profileColumns, &rec); err != nil {
		return err
	}
	profile.Version = rec.Version
	return nil
}

func (s *Store) DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error {
	res := s.db.WithContext(ctx).Delete(&profileRecord{}, "user_id = ?", userID.Hex())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
