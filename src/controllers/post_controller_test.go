package controllers_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register("Ana", "ana@example.com")

	post := env.createPost(token, "Hello world")

	assert.False(t, post.ID.IsZero())
	assert.Equal(t, userID, post.User)
	assert.Equal(t, "Hello world", post.Text)
	assert.Equal(t, "Ana", post.Name)
	assert.Equal(t, lib.Gravatar("ana@example.com"), post.Avatar)
	assert.NotNil(t, post.Likes)
	assert.Empty(t, post.Likes)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
	assert.WithinDuration(t, time.Now(), post.Date, time.Minute)
}

func TestCreatePostRejects(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("Ana", "ana@example.com")

	var verrs validationBody
	status := env.doJSON(fiber.MethodPost, "/api/posts", token, fiber.Map{"text": ""}, &verrs)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []lib.ValidationError{{Msg: "Text is required", Param: "text", Location: "body"}}, verrs.Errors)

	ghost, err := lib.GenerateJWT(testSecret, primitive.NewObjectID(), time.Hour)
	require.NoError(t, err)
	var msg lib.MessageBody
	status = env.doJSON(fiber.MethodPost, "/api/posts", ghost, fiber.Map{"text": "hi"}, &msg)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No user found", msg.Msg)
}

func TestPostRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	var msg lib.MessageBody
	status := env.doJSON(fiber.MethodGet, "/api/posts", "", nil, &msg)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "No token, authorization denied", msg.Msg)

	status = env.doJSON(fiber.MethodGet, "/api/posts", "garbage", nil, &msg)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Token is not valid", msg.Msg)
}

func TestGetPosts(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("Ana", "ana@example.com")

	var empty []models.Post
	status := env.doJSON(fiber.MethodGet, "/api/posts", token, nil, &empty)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	env.createPost(token, "first")
	time.Sleep(5 * time.Millisecond)
	env.createPost(token, "second")

	var posts []models.Post
	status = env.doJSON(fiber.MethodGet, "/api/posts", token, nil, &posts)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Text)
	assert.Equal(t, "first", posts[1].Text)
}

func TestGetPostByID(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("Ana", "ana@example.com")
	created := env.createPost(token, "hello")

	var post models.Post
	status := env.doJSON(fiber.MethodGet, "/api/posts/"+created.ID.Hex(), token, nil, &post)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, created.ID, post.ID)
	assert.Equal(t, "hello", post.Text)

	for _, id := range []string{"not-an-id", primitive.NewObjectID().Hex()} {
		var msg lib.MessageBody
		status := env.doJSON(fiber.MethodGet, "/api/posts/"+id, token, nil, &msg)
		assert.Equal(t, fiber.StatusNotFound, status, id)
		assert.Equal(t, "No post found", msg.Msg)
	}
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	ana, _ := env.register("Ana", "ana@example.com")
	bob, _ := env.register("Bob", "bob@example.com")
	post := env.createPost(ana, "hello")
	path := "/api/posts/" + post.ID.Hex()

	var msg lib.MessageBody
	status := env.doJSON(fiber.MethodDelete, path, bob, nil, &msg)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Can only delete posts this user has made", msg.Msg)

	var unchanged models.Post
	status = env.doJSON(fiber.MethodGet, path, bob, nil, &unchanged)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, post.ID, unchanged.ID)
	assert.Equal(t, "hello", unchanged.Text)
	assert.Equal(t, post.Version, unchanged.Version)

	status = env.doJSON(fiber.MethodDelete, path, ana, nil, &msg)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Post deleted successfully", msg.Msg)

	status = env.doJSON(fiber.MethodGet, path, ana, nil, &msg)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No post found", msg.Msg)

	status = env.doJSON(fiber.MethodDelete, path, ana, nil, &msg)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Post does not exist", msg.Msg)

	status = env.doJSON(fiber.MethodDelete, "/api/posts/nope", ana, nil, &msg)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No post found", msg.Msg)
}

func TestLikeAndUnlike(t *testing.T) {
	env := newTestEnv(t)
	ana, anaID := env.register("Ana", "ana@example.com")
	bob, bobID := env.register("Bob", "bob@example.com")
	post := env.createPost(ana, "hello")
	id := post.ID.Hex()

	var likes []models.Like
	status := env.doJSON(fiber.MethodPut, "/api/posts/like/"+id, ana, nil, &likes)
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, likes, 1)
	assert.Equal(t, anaID, likes[0].User)

	status = env.doJSON(fiber.MethodPut, "/api/posts/like/"+id, bob, nil, &likes)
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, likes, 2)
	assert.Equal(t, bobID, likes[0].User, "newest like first")

	var msg lib.MessageBody
	status = env.doJSON(fiber.MethodPut, "/api/posts/like/"+id, ana, nil, &msg)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Post has already been liked by user", msg.Msg)

	likes = nil
	status = env.doJSON(fiber.MethodDelete, "/api/posts/unlike/"+id, ana, nil, &likes)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, likes, 1)
	assert.Equal(t, bobID, likes[0].User)

	status = env.doJSON(fiber.MethodDelete, "/api/posts/unlike/"+id, ana, nil, &msg)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Post cannot be unliked by user", msg.Msg)

	var stored models.Post
	env.doJSON(fiber.MethodGet, "/api/posts/"+id, ana, nil, &stored)
	assert.Len(t, stored.Likes, 1)
	assert.Equal(t, 3, stored.Version)
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("Ana", "ana@example.com")

	for _, path := range []string{
		"/api/posts/like/" + primitive.NewObjectID().Hex(),
		"/api/posts/like/nope",
	} {
		var msg lib.MessageBody
		status := env.doJSON(fiber.MethodPut, path, token, nil, &msg)
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "No post found", msg.Msg)
	}

	var msg lib.MessageBody
	status := env.doJSON(fiber.MethodDelete, "/api/posts/unlike/nope", token, nil, &msg)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No post found", msg.Msg)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ana, anaID := env.register("Ana", "ana@example.com")
	bob, _ := env.register("Bob", "bob@example.com")
	post := env.createPost(ana, "hello")

	comments := env.comment(bob, post.ID, "first")
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].Name)
	assert.Equal(t, "first", comments[0].Text)

	comments = env.comment(ana, post.ID, "second")
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text, "newest comment first")
	assert.Equal(t, anaID, comments[0].User)
	bobComment := comments[1]

	path := "/api/posts/comment/" + post.ID.Hex() + "/" + bobComment.ID.Hex()

	var msg lib.MessageBody
	status := env.doJSON(fiber.MethodDelete, path, ana, nil, &msg)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "User not authorized", msg.Msg)

	var remaining []models.Comment
	status = env.doJSON(fiber.MethodDelete, path, bob, nil, &remaining)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, remaining, 1)
	assert.Equal(t, "second", remaining[0].Text)

	status = env.doJSON(fiber.MethodDelete, path, bob, nil, &msg)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No comment exists", msg.Msg)

	status = env.doJSON(fiber.MethodDelete, "/api/posts/comment/"+post.ID.Hex()+"/nope", bob, nil, &msg)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "No comment exists", msg.Msg)
}

func TestCommentRejects(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("Ana", "ana@example.com")
	post := env.createPost(token, "hello")

	var verrs validationBody
	status := env.doJSON(fiber.MethodPost, "/api/posts/comment/"+post.ID.Hex(), token, fiber.Map{}, &verrs)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, verrs.Errors, 1)
	assert.Equal(t, "Text is required", verrs.Errors[0].Msg)

	for _, id := range []string{"nope", primitive.NewObjectID().Hex()} {
		var msg lib.MessageBody
		status := env.doJSON(fiber.MethodPost, "/api/posts/comment/"+id, token, fiber.Map{"text": "hi"}, &msg)
		assert.Equal(t, fiber.StatusBadRequest, status, id)
		assert.Equal(t, "No post found", msg.Msg)

		status = env.doJSON(fiber.MethodDelete, "/api/posts/comment/"+id+"/"+primitive.NewObjectID().Hex(), token, nil, &msg)
		assert.Equal(t, fiber.StatusBadRequest, status, id)
		assert.Equal(t, "No post found", msg.Msg)
	}
}
