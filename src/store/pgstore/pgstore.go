// Package pgstore implements store.Store on PostgreSQL. Posts and profiles
// are kept as JSONB documents next to the columns the queries filter on.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	email    TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	avatar   TEXT NOT NULL,
	date     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	date    TIMESTAMPTZ NOT NULL,
	version INT NOT NULL,
	doc     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_date_idx ON posts (date DESC);
CREATE INDEX IF NOT EXISTS posts_user_idx ON posts (user_id);
CREATE TABLE IF NOT EXISTS profiles (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	date    TIMESTAMPTZ NOT NULL,
	version INT NOT NULL,
	doc     JSONB NOT NULL
);`

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect opens a pool on dsn and creates the tables when missing
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 20
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Info("Connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return store.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return store.ErrDuplicate
	default:
		return err
	}
}

// guardedExec runs a version-guarded UPDATE on table and separates a stale
// version from a missing row when nothing matched
func (s *Store) guardedExec(ctx context.Context, table, sql string, id string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStale
}

// Users

const userColumns = "id, name, email, password, avatar, date"

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user models.User
		id   string
	)
	if err := row.Scan(&id, &user.Name, &user.Email, &user.Password, &user.Avatar, &user.Date); err != nil {
		return nil, translate(err)
	}
	user.ID, _ = primitive.ObjectIDFromHex(id)
	user.Date = user.Date.UTC()
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		user.ID.Hex(), user.Name, user.Email, user.Password, user.Avatar, user.Date)
	return translate(err)
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id.Hex()))
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
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

	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = ANY($1)", hexIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id.Hex())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Posts

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		doc     []byte
		version int
	)
	if err := row.Scan(&doc, &version); err != nil {
		return nil, translate(err)
	}

	var post models.Post
	if err := json.Unmarshal(doc, &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	post.Version = version
	post.Normalize()
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	doc, err := json.Marshal(post)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO posts (id, user_id, date, version, doc) VALUES ($1, $2, $3, $4, $5)",
		post.ID.Hex(), post.User.Hex(), post.Date, post.Version, doc)
	return translate(err)
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx, "SELECT doc, version FROM posts ORDER BY date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (s *Store) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return scanPost(s.pool.QueryRow(ctx, "SELECT doc, version FROM posts WHERE id = $1", id.Hex()))
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	next := *post
	next.Version++
	doc, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = s.guardedExec(ctx, "posts",
		"UPDATE posts SET doc = $1, version = $2 WHERE id = $3 AND version = $4",
		post.ID.Hex(), doc, next.Version, post.ID.Hex(), post.Version)
	if err != nil {
		return err
	}
	post.Version = next.Version
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id.Hex())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePostsByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE user_id = $1", userID.Hex())
	return err
}

// Profiles

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		doc     []byte
		version int
	)
	if err := row.Scan(&doc, &version); err != nil {
		return nil, translate(err)
	}

	var profile models.Profile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	profile.Version = version
	profile.Normalize()
	return &profile, nil
}

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.Normalize()
	doc, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO profiles (id, user_id, date, version, doc) VALUES ($1, $2, $3, $4, $5)",
		profile.ID.Hex(), profile.User.Hex(), profile.Date, profile.Version, doc)
	return translate(err)
}

func (s *Store) FindProfileByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, "SELECT doc, version FROM profiles WHERE user_id = $1", userID.Hex()))
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.pool.Query(ctx, "SELECT doc, version FROM profiles ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	profile.Normalize()
	next := *profile
	next.Version++
	doc, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = s.guardedExec(ctx, "profiles",
		"UPDATE profiles SET doc = $1, version = $2 WHERE id = $3 AND version = $4",
		profile.ID.Hex(), doc, next.Version, profile.ID.Hex(), profile.Version)
	if err != nil {
		return err
	}
	profile.Version = next.Version
	return nil
}

func (s *Store) DeleteProfileByUser(ctx context.Context, userID primitive.ObjectID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM profiles WHERE user_id = $1", userID.Hex())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
