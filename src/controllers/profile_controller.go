package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/middleware"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GithubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// apply copies the non-empty fields onto the profile; empty fields keep their stored value
func (r profileRequest) apply(p *models.Profile) {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	set(&p.Company, r.Company)
	set(&p.Website, r.Website)
	set(&p.Location, r.Location)
	set(&p.Bio, r.Bio)
	set(&p.Status, r.Status)
	set(&p.GithubUsername, r.GithubUsername)
	if r.Skills != "" {
		p.Skills = splitSkills(r.Skills)
	}

	set(&p.Social.Youtube, r.Youtube)
	set(&p.Social.Twitter, r.Twitter)
	set(&p.Social.Facebook, r.Facebook)
	set(&p.Social.Linkedin, r.Linkedin)
	set(&p.Social.Instagram, r.Instagram)
}

func splitSkills(raw string) []string {
	skills := []string{}
	for _, skill := range strings.Split(raw, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

type experienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// optionalDate parses an optional "to" date
func optionalDate(v *lib.Validation, value, param string) *time.Time {
	if value == "" {
		return nil
	}
	t := v.Date(value, param, "Invalid date")
	return &t
}

// GetMyProfile returns the authenticated user's profile
//
// @Summary  Current user's profile
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} models.ProfileDto
// @Failure  400 {object} lib.MessageBody
// @Router   /api/profile/me [get]
func (h *Controller) GetMyProfile(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.Store.FindProfileByUser(ctx, middleware.CurrentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "There is no profile for this user")
	}
	if err != nil {
		return err
	}

	dto, err := h.expandProfile(ctx, profile)
	if err != nil {
		return err
	}
	return c.JSON(dto)
}

// UpsertProfile creates the authenticated user's profile or updates the fields sent
//
// @Summary  Create or update profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    data body     profileRequest true "Profile fields"
// @Success  200  {object} models.Profile
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/profile [post]
func (h *Controller) UpsertProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.Status, "status", "Status is required")
	v.Required(req.Skills, "skills", "Skills is required")
	if err := v.Err(); err != nil {
		return err
	}

	userID := middleware.CurrentUserID(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := store.MutateProfile(ctx, h.Store, userID, func(p *models.Profile) error {
		req.apply(p)
		return nil
	})
	if err == nil {
		return c.JSON(profile)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	profile = models.NewProfile(userID)
	req.apply(profile)
	err = h.Store.CreateProfile(ctx, profile)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with another create; update the winner instead
		profile, err = store.MutateProfile(ctx, h.Store, userID, func(p *models.Profile) error {
			req.apply(p)
			return nil
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

// GetProfiles returns every profile with its user's name and avatar
//
// @Summary  List profiles
// @Tags     profile
// @Produce  json
// @Success  200 {array} models.ProfileDto
// @Router   /api/profile [get]
func (h *Controller) GetProfiles(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	profiles, err := h.Store.ListProfiles(ctx)
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User)
	}
	users, err := h.Store.FindUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	dtos := make([]models.ProfileDto, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, p.WithUser(byID[p.User]))
	}
	return c.JSON(dtos)
}

// GetProfileByUserID returns the profile of the given user
//
// @Summary  Get profile by user
// @Tags     profile
// @Produce  json
// @Param    user_id path     string true "User ID"
// @Success  200     {object} models.ProfileDto
// @Failure  400     {object} lib.MessageBody
// @Router   /api/profile/user/{user_id} [get]
func (h *Controller) GetProfileByUserID(c *fiber.Ctx) error {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Profile not found")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.Store.FindProfileByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Profile not found")
	}
	if err != nil {
		return err
	}

	dto, err := h.expandProfile(ctx, profile)
	if err != nil {
		return err
	}
	return c.JSON(dto)
}

// DeleteProfile removes the authenticated user's posts, profile and account
//
// @Summary  Delete profile, user and posts
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} lib.MessageBody
// @Router   /api/profile [delete]
func (h *Controller) DeleteProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.DeletePostsByUser(ctx, userID); err != nil {
		return err
	}
	if err := h.Store.DeleteProfileByUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := h.Store.DeleteUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return c.JSON(lib.MessageResponse("User deleted"))
}

// AddExperience puts a new experience entry at the front of the profile's list
//
// @Summary  Add experience
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    data body     experienceRequest true "Experience"
// @Success  200  {object} models.Profile
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/profile/experience [put]
func (h *Controller) AddExperience(c *fiber.Ctx) error {
	var req experienceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.Title, "title", "Title is required")
	v.Required(req.Company, "company", "Company is required")
	from := v.Date(req.From, "from", "From date is required")
	to := optionalDate(&v, req.To, "to")
	if err := v.Err(); err != nil {
		return err
	}

	exp := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	}

	return h.mutateProfile(c, func(p *models.Profile) {
		p.AddExperience(exp)
	})
}

// DeleteExperience removes an experience entry by ID
//
// @Summary  Delete experience
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Param    exp_id path     string true "Experience ID"
// @Success  200    {object} models.Profile
// @Router   /api/profile/experience/{exp_id} [delete]
func (h *Controller) DeleteExperience(c *fiber.Ctx) error {
	expID, _ := paramID(c, "exp_id")
	return h.mutateProfile(c, func(p *models.Profile) {
		p.RemoveExperience(expID)
	})
}

// AddEducation puts a new education entry at the front of the profile's list
//
// @Summary  Add education
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    data body     educationRequest true "Education"
// @Success  200  {object} models.Profile
// @Failure  400  {object} lib.ValidationErrors
// @Router   /api/profile/education [put]
func (h *Controller) AddEducation(c *fiber.Ctx) error {
	var req educationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var v lib.Validation
	v.Required(req.School, "school", "School is required")
	v.Required(req.Degree, "degree", "Degree is required")
	v.Required(req.FieldOfStudy, "fieldofstudy", "Field of study is required")
	from := v.Date(req.From, "from", "From date is required")
	to := optionalDate(&v, req.To, "to")
	if err := v.Err(); err != nil {
		return err
	}

	edu := models.Education{
		ID:           primitive.NewObjectID(),
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	}

	return h.mutateProfile(c, func(p *models.Profile) {
		p.AddEducation(edu)
	})
}

// DeleteEducation removes an education entry by ID
//
// @Summary  Delete education
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Param    edu_id path     string true "Education ID"
// @Success  200    {object} models.Profile
// @Router   /api/profile/education/{edu_id} [delete]
func (h *Controller) DeleteEducation(c *fiber.Ctx) error {
	eduID, _ := paramID(c, "edu_id")
	return h.mutateProfile(c, func(p *models.Profile) {
		p.RemoveEducation(eduID)
	})
}

// mutateProfile applies fn to the authenticated user's profile and responds with the result
func (h *Controller) mutateProfile(c *fiber.Ctx, fn func(*models.Profile)) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := store.MutateProfile(ctx, h.Store, middleware.CurrentUserID(c), func(p *models.Profile) error {
		fn(p)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "There is no profile for this user")
	}
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

func (h *Controller) expandProfile(ctx context.Context, profile *models.Profile) (models.ProfileDto, error) {
	user, err := h.Store.FindUserByID(ctx, profile.User)
	if errors.Is(err, store.ErrNotFound) {
		return profile.WithUser(nil), nil
	}
	if err != nil {
		return models.ProfileDto{}, err
	}
	return profile.WithUser(user), nil
}
