package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/middleware"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
)

type textRequest struct {
	Text string `json:"text"`
}

// CreatePost creates a new post for the authenticated user with a snapshot of their name and avatar
//
// @Summary  Create post
// @Tags     posts
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    data body     textRequest true "Post text"
// @Success  201  {object} models.Post
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/posts [post]
func (h *Controller) CreatePost(c *fiber.Ctx) error {
	var req textRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.Text, "text", "Text is required")
	if err := v.Err(); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.FindUserByID(ctx, middleware.CurrentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "No user found")
	}
	if err != nil {
		return err
	}

	post := models.NewPost(user, req.Text)
	if err := h.Store.CreatePost(ctx, post); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts returns every post, newest first
//
// @Summary  List posts
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} models.Post
// @Router   /api/posts [get]
func (h *Controller) GetPosts(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	posts, err := h.Store.ListPosts(ctx)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPostByID returns a post by its ID; malformed IDs are reported as missing
//
// @Summary  Get post
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "Post ID"
// @Success  200 {object} models.Post
// @Failure  404 {object} lib.MessageBody
// @Router   /api/posts/{id} [get]
func (h *Controller) GetPostByID(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.Store.FindPostByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost deletes a post by ID if the authenticated user is its owner
//
// @Summary  Delete post
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "Post ID"
// @Success  200 {object} lib.MessageBody
// @Failure  400 {object} lib.MessageBody
// @Failure  401 {object} lib.MessageBody
// @Failure  404 {object} lib.MessageBody
// @Router   /api/posts/{id} [delete]
func (h *Controller) DeletePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.Store.FindPostByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Post does not exist")
	}
	if err != nil {
		return err
	}

	if post.User != middleware.CurrentUserID(c) {
		return fiber.NewError(fiber.StatusUnauthorized, "Can only delete posts this user has made")
	}

	err = h.Store.DeletePost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Post does not exist")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post deleted successfully"))
}

// LikePost adds the authenticated user's like to the front of the post's likes
//
// @Summary  Like post
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Param    id  path    string true "Post ID"
// @Success  201 {array} models.Like
// @Failure  400 {object} lib.MessageBody
// @Failure  404 {object} lib.MessageBody
// @Router   /api/posts/like/{id} [put]
func (h *Controller) LikePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}
	userID := middleware.CurrentUserID(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := store.MutatePost(ctx, h.Store, postID, func(p *models.Post) error {
		if p.LikedBy(userID) {
			return fiber.NewError(fiber.StatusBadRequest, "Post has already been liked by user")
		}
		p.AddLike(userID)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(post.Likes)
}

// UnlikePost removes the authenticated user's like from the post
//
// @Summary  Unlike post
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Param    id  path    string true "Post ID"
// @Success  200 {array} models.Like
// @Failure  400 {object} lib.MessageBody
// @Failure  404 {object} lib.MessageBody
// @Router   /api/posts/unlike/{id} [delete]
func (h *Controller) UnlikePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}
	userID := middleware.CurrentUserID(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := store.MutatePost(ctx, h.Store, postID, func(p *models.Post) error {
		if !p.RemoveLike(userID) {
			return fiber.NewError(fiber.StatusBadRequest, "Post cannot be unliked by user")
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "No post found")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(post.Likes)
}

// CreateComment adds a comment by the authenticated user to the front of the post's comments
//
// @Summary  Comment on post
// @Tags     posts
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path    string      true "Post ID"
// @Param    data body    textRequest true "Comment text"
// @Success  201  {array} models.Comment
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/posts/comment/{id} [post]
func (h *Controller) CreateComment(c *fiber.Ctx) error {
	var req textRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.Text, "text", "Text is required")
	if err := v.Err(); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.FindUserByID(ctx, middleware.CurrentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "No user found")
	}
	if err != nil {
		return err
	}

	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "No post found")
	}

	post, err := store.MutatePost(ctx, h.Store, postID, func(p *models.Post) error {
		p.AddComment(models.NewComment(user, req.Text))
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "No post found")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(post.Comments)
}

// DeleteComment removes a comment from a post if the authenticated user wrote it
//
// @Summary  Delete comment
// @Tags     posts
// @Produce  json
// @Security BearerAuth
// @Param    id         path    string true "Post ID"
// @Param    comment_id path    string true "Comment ID"
// @Success  200        {array} models.Comment
// @Failure  400        {object} lib.MessageBody
// @Failure  401        {object} lib.MessageBody
// @Failure  404        {object} lib.MessageBody
// @Router   /api/posts/comment/{id}/{comment_id} [delete]
func (h *Controller) DeleteComment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "No post found")
	}
	commentID, commentOK := paramID(c, "comment_id")
	userID := middleware.CurrentUserID(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := store.MutatePost(ctx, h.Store, postID, func(p *models.Post) error {
		var comment *models.Comment
		if commentOK {
			comment = p.FindComment(commentID)
		}
		if comment == nil {
			return fiber.NewError(fiber.StatusNotFound, "No comment exists")
		}
		if comment.User != userID {
			return fiber.NewError(fiber.StatusUnauthorized, "User not authorized")
		}
		p.RemoveComment(commentID)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "No post found")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(post.Comments)
}
