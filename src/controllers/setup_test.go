package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/devconnector/src/config"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/models"
	"github.com/theleywin/devconnector/src/routes"
	"github.com/theleywin/devconnector/src/store/sqlstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type testEnv struct {
	t     *testing.T
	app   *fiber.App
	store *sqlstore.Store
}

type validationBody struct {
	Errors []lib.ValidationError `json:"errors"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlstore.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	cfg := config.Config{
		CORSOrigin:     "*",
		JWTSecret:      testSecret,
		JWTTTL:         time.Hour,
		RequestTimeout: 5 * time.Second,
	}
	return &testEnv{t: t, app: routes.NewApp(cfg, st), store: st}
}

// do sends a request and returns the status and the raw body
func (e *testEnv) do(method, path, token string, body any) (int, []byte) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, raw
}

// doJSON is do followed by decoding the body into out
func (e *testEnv) doJSON(method, path, token string, body, out any) int {
	e.t.Helper()
	status, raw := e.do(method, path, token, body)
	require.NoError(e.t, json.Unmarshal(raw, out), string(raw))
	return status
}

// register signs a user up through the API and returns its token and id
func (e *testEnv) register(name, email string) (string, primitive.ObjectID) {
	e.t.Helper()

	var tok struct {
		Token string `json:"token"`
	}
	status := e.doJSON(fiber.MethodPost, "/api/users", "", fiber.Map{
		"name": name, "email": email, "password": "secret123",
	}, &tok)
	require.Equal(e.t, fiber.StatusOK, status)
	require.NotEmpty(e.t, tok.Token)

	userID, err := lib.VerifyJWT(testSecret, tok.Token)
	require.NoError(e.t, err)
	return tok.Token, userID
}

func (e *testEnv) createPost(token, text string) models.Post {
	e.t.Helper()
	var post models.Post
	status := e.doJSON(fiber.MethodPost, "/api/posts", token, fiber.Map{"text": text}, &post)
	require.Equal(e.t, fiber.StatusCreated, status)
	return post
}

func (e *testEnv) comment(token string, postID primitive.ObjectID, text string) []models.Comment {
	e.t.Helper()
	var comments []models.Comment
	status := e.doJSON(fiber.MethodPost, "/api/posts/comment/"+postID.Hex(), token, fiber.Map{"text": text}, &comments)
	require.Equal(e.t, fiber.StatusCreated, status)
	return comments
}
