package yetichat_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-yetichat"
	"github.com/stretchr/testify/assert"
)

func TestPlatformErrorString(t *testing.T) {
	assert.Equal(t, "ERR_X: boom", (&yetichat.PlatformError{Code: "ERR_X", Message: "boom"}).Error())
	assert.Equal(t, "boom", (&yetichat.PlatformError{Message: "boom"}).Error())
	assert.Equal(t, "ERR_X", (&yetichat.PlatformError{Code: "ERR_X"}).Error())

	cause := errors.New("dial tcp: refused")
	perr := &yetichat.PlatformError{Err: cause}
	assert.Equal(t, "dial tcp: refused", perr.Error())
	assert.ErrorIs(t, perr, cause)
}

func TestValidationErrorCategory(t *testing.T) {
	err := yetichat.NewValidationError("UID cannot be empty")

	assert.Equal(t, goerrors.CategoryValidation, err.Category)
	assert.Equal(t, yetichat.TextCodeValidation, err.TextCode)
	assert.True(t, yetichat.IsValidationError(err))
	assert.False(t, yetichat.IsPlatformError(err))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", yetichat.NewValidationError("bad uid"))

	assert.True(t, yetichat.IsValidationError(wrapped))
	assert.Equal(t, "bad uid", yetichat.ErrorMessage(wrapped))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", yetichat.ErrorMessage(nil))
	assert.Equal(t, "plain", yetichat.ErrorMessage(errors.New("plain")))
}

func TestPlatformCode(t *testing.T) {
	assert.Equal(t, "", yetichat.PlatformCode(errors.New("plain")))
	assert.Equal(t, yetichat.CodeUIDNotFound, yetichat.PlatformCode(
		fmt.Errorf("wrapped: %w", &yetichat.PlatformError{Code: yetichat.CodeUIDNotFound}),
	))
}
