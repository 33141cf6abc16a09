package test_functional

import (
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersMe(t *testing.T) {
	meURL := AppBaseURL
	meURL.Path = "/users/me"

	t.Run("returns the current user", func(t *testing.T) {
		defer FlushDB()

		token := SignupAndSignin(t, "test@gmail.com", "111111111111")

		type Resp struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		}

		resp, err := resty.New().R().
			SetAuthToken(token).
			SetResult(&Resp{}).
			Get(meURL.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode())
		got, ok := resp.Result().(*Resp)
		require.True(t, ok)
		assert.Equal(t, "test@gmail.com", got.Email)
	})

	t.Run("requires a token", func(t *testing.T) {
		resp, err := resty.New().R().Get(meURL.String())
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	})
}

func TestUsersPatch(t *testing.T) {
	patchURL := AppBaseURL
	patchURL.Path = "/users"

	t.Run("patches profile fields", func(t *testing.T) {
		defer FlushDB()

		token := SignupAndSignin(t, "test@gmail.com", "111111111111")

		resp, err := resty.New().R().
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json").
			SetBody(`{"email": "god@example.com", "firstName": "The God"}`).
			Patch(patchURL.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Contains(t, resp.String(), "The God")
		assert.Contains(t, resp.String(), "god@example.com")
	})

	t.Run("requires a token", func(t *testing.T) {
		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"firstName": "Anon"}`).
			Patch(patchURL.String())
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	})
}
