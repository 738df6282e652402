package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser validates the signup data, hashes the password, creates the user and returns a JWT
//
// @Summary  Register user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    data body     registerRequest true "Signup data"
// @Success  200  {object} tokenResponse
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/users [post]
func (h *Controller) RegisterUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.Name, "name", "Name is required")
	v.Email(req.Email, "email", "Please include a valid email")
	v.MinLength(req.Password, 6, "password", "Please enter a password with 6 or more characters")
	if err := v.Err(); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	_, err := h.Store.FindUserByEmail(ctx, req.Email)
	if err == nil {
		return lib.Reject("User already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Avatar:   lib.Gravatar(req.Email),
		Date:     models.Now(),
	}

	err = h.Store.CreateUser(ctx, &user)
	if errors.Is(err, store.ErrDuplicate) {
		return lib.Reject("User already exists")
	}
	if err != nil {
		return err
	}

	token, err := lib.GenerateJWT(h.Config.JWTSecret, user.ID, h.Config.JWTTTL)
	if err != nil {
		return err
	}

	return c.JSON(tokenResponse{Token: token})
}
