package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	ve := NewValidation("subdomain", "must be between 3 and 63 characters")
	assert.True(t, IsValidation(ve))
	assert.False(t, IsConflict(ve))
	assert.Equal(t, "subdomain: must be between 3 and 63 characters", ve.Error())

	ce := NewConflict("siteId", "could not find a unique site identifier")
	assert.True(t, IsConflict(ce))
	assert.False(t, IsValidation(ce))

	ee := NewExternalProcess("nginx reload", "exit status 1", fmt.Errorf("boom"))
	assert.True(t, IsExternalProcess(ee))
	assert.Contains(t, ee.Error(), "nginx reload")
	assert.Contains(t, ee.Error(), "exit status 1")
}

func TestKindsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("starting generation: %w", NewValidation("siteName", "is required"))
	assert.True(t, IsValidation(wrapped))

	wrapped = fmt.Errorf("deploying: %w", NewExternalProcess("docker run", "", fmt.Errorf("boom")))
	assert.True(t, IsExternalProcess(wrapped))
}

func TestExternalProcessUnwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 2")
	ee := NewExternalProcess("build", "", cause)
	assert.ErrorIs(t, ee, cause)
}
