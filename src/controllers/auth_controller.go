package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/middleware"
	"github.com/theleywin/devconnector/src/store"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// GetCurrentUser returns the authenticated user without the password hash
//
// @Summary  Current user
// @Tags     auth
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} models.User
// @Failure  400 {object} lib.MessageBody
// @Router   /api/auth [get]
func (h *Controller) GetCurrentUser(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.FindUserByID(ctx, middleware.CurrentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "No user found")
	}
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// Login authenticates a user by email and password and returns a JWT
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    data body     loginRequest true "Credentials"
// @Success  200  {object} tokenResponse
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/auth [post]
func (h *Controller) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Email(req.Email, "email", "Please include a valid email")
	v.Required(req.Password, "password", "Password is required")
	if err := v.Err(); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return lib.Reject("Invalid Credentials")
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return lib.Reject("Invalid Credentials")
	}

	token, err := lib.GenerateJWT(h.Config.JWTSecret, user.ID, h.Config.JWTTTL)
	if err != nil {
		return err
	}

	return c.JSON(tokenResponse{Token: token})
}
