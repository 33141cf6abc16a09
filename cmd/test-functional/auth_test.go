package test_functional

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	u := AppBaseURL
	u.Path = "/auth/signup"

	t.Run("successful signup", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		type Resp struct {
			ID        uint64  `json:"id"`
			Email     string  `json:"email"`
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			CreatedAt string  `json:"createdAt"`
		}

		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&Resp{}).
			SetBody(`
			{"email": "test@gmail.com", "password": "111111111111", "firstName": "Test"}
		`).
			Post(u.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		got, ok := resp.Result().(*Resp)
		require.True(t, ok)
		assert.NotZero(t, got.ID)
		assert.Equal(t, "test@gmail.com", got.Email)
		require.NotNil(t, got.FirstName)
		assert.Equal(t, "Test", *got.FirstName)
		assert.NotEmpty(t, got.CreatedAt)
		assert.NotContains(t, resp.String(), "hash")

		var hash string
		err = DBConn.QueryRow(ctx, "SELECT hash FROM users WHERE id=$1", got.ID).Scan(&hash)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		defer FlushDB()

		body := `{"email": "test@gmail.com", "password": "111111111111"}`

		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(u.String())
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode())

		resp, err = resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(u.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
		assert.Contains(t, resp.String(), "Credentials Taken")
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`
			{"something": "???"}
		`).
			Post(u.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestSignin(t *testing.T) {
	u := AppBaseURL
	u.Path = "/auth/signin"

	t.Run("successful signin", func(t *testing.T) {
		defer FlushDB()

		token := SignupAndSignin(t, "test@gmail.com", "111111111111")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown email fail the same way", func(t *testing.T) {
		defer FlushDB()

		SignupAndSignin(t, "test@gmail.com", "111111111111")

		wrongPass, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"email": "test@gmail.com", "password": "wrong-password"}`).
			Post(u.String())
		require.NoError(t, err)

		unknown, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"email": "nobody@gmail.com", "password": "111111111111"}`).
			Post(u.String())
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, wrongPass.StatusCode())
		assert.Equal(t, http.StatusForbidden, unknown.StatusCode())
		assert.JSONEq(t, wrongPass.String(), unknown.String())
	})
}
