package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Development(t *testing.T) {
	t.Run("operational error exposes message and stack", func(t *testing.T) {
		resp := NotFound("no tour found with that ID").Render(false)

		assert.Equal(t, StatusFail, resp.Status)
		assert.Equal(t, "no tour found with that ID", resp.Message)
		assert.NotEmpty(t, resp.Stack)
	})

	t.Run("defect exposes cause and stack", func(t *testing.T) {
		cause := errors.New("pq: relation does not exist")
		resp := Internal(cause).Render(false)

		assert.Equal(t, StatusError, resp.Status)
		assert.Contains(t, resp.Err, "relation does not exist")
		assert.NotEmpty(t, resp.Stack)
	})
}

func TestRender_Production(t *testing.T) {
	t.Run("operational error exposes only status and message", func(t *testing.T) {
		resp := Unauthenticated("incorrect email or password").Render(true)

		assert.Equal(t, StatusFail, resp.Status)
		assert.Equal(t, "incorrect email or password", resp.Message)
		assert.Empty(t, resp.Err)
		assert.Empty(t, resp.Stack)
	})

	t.Run("defect never leaks internals", func(t *testing.T) {
		cause := errors.New("password column mismatch at /srv/app/store.go:42")
		resp := Internal(cause).Render(true)

		assert.Equal(t, StatusError, resp.Status)
		assert.Equal(t, "something went very wrong", resp.Message)
		assert.Empty(t, resp.Err)
		assert.Empty(t, resp.Stack)
		assert.NotContains(t, resp.Message, "store.go")
	})
}
