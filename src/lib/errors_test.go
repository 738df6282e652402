package lib

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidation(t *testing.T) {
	var v Validation
	v.Required("", "name", "Name is required")
	v.Email("not-an-email", "email", "Please include a valid email")
	v.Email("ana@localhost", "email", "Please include a valid email")
	v.MinLength("12345", 6, "password", "Too short")
	v.Date("yesterday", "from", "From date is required")

	var verrs ValidationErrors
	require.ErrorAs(t, v.Err(), &verrs)
	require.Len(t, verrs, 5)
	assert.Equal(t, ValidationError{Msg: "Name is required", Param: "name", Location: "body"}, verrs[0])
	assert.Equal(t, "Invalid date", verrs[4].Msg)
}

func TestValidationPasses(t *testing.T) {
	var v Validation
	v.Required("ana", "name", "Name is required")
	v.Email("ana@example.com", "email", "Please include a valid email")
	v.MinLength("123456", 6, "password", "Too short")
	from := v.Date("2020-01-02", "from", "From date is required")

	assert.NoError(t, v.Err())
	assert.Equal(t, 2020, from.Year())
}

func TestParseDate(t *testing.T) {
	ts, err := ParseDate("2021-06-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = ParseDate("01/06/2021")
	assert.Error(t, err)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/validation", func(c *fiber.Ctx) error { return Reject("User already exists") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "No post found") })
	app.Get("/internal", func(c *fiber.Ctx) error { return errors.New("db down") })

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/validation", fiber.StatusBadRequest, `{"errors":[{"msg":"User already exists"}]}`},
		{"/fiber", fiber.StatusNotFound, `{"msg":"No post found"}`},
		{"/internal", fiber.StatusInternalServerError, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if json.Valid([]byte(tt.body)) {
				assert.JSONEq(t, tt.body, string(body))
			} else {
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}
