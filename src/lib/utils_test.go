package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := GenerateJWT("secret", userID, time.Hour)
	require.NoError(t, err)

	got, err := VerifyJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyJWTRejects(t *testing.T) {
	userID := primitive.NewObjectID()

	valid, err := GenerateJWT("secret", userID, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT("secret", userID, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "secret", expired},
		{"garbage", "secret", "not.a.token"},
		{"unsigned", "secret", "eyJhbGciOiJub25lIn0.eyJ1c2VySWQiOiJ4In0."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyJWT(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGravatar(t *testing.T) {
	assert.Equal(t,
		"//www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm",
		Gravatar(" MyEmailAddress@example.com "))
}
