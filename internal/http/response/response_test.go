package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithMessage(t *testing.T) {
	resp := OKWithMessage("Please check your email")

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "Please check your email", resp.Message)
	assert.Empty(t, resp.Error)
}

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"email": "a@example.com"})

	assert.Equal(t, StatusOK, resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("invalid request body")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Email string `validate:"required"`
	}

	err := validator.New().Struct(req{})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email is a required field")
}
