package provisioning

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors(t *testing.T) {
	t.Parallel()
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("tenant", "is required")
	errs.Add("floors", "must be at least 1, got %d", 0)

	err := errs.Err()
	assert.EqualError(t, err, "invalid request: tenant: is required; floors: must be at least 1, got 0")
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
}

func TestIsValidation(t *testing.T) {
	t.Parallel()
	assert.True(t, IsValidation(ValidationError{Field: "site", Message: "not found"}))
	assert.False(t, IsValidation(errors.New("database is locked")))
	assert.False(t, IsValidation(nil))
}

func TestContext_Link(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t, true)

	assert.Empty(t, ctx.Link(LinkDevices, 7))

	ctx.Config.Inventory.URL = "https://netbox.example.com/"
	assert.Equal(t, "https://netbox.example.com/dcim/devices/7/", ctx.Link(LinkDevices, 7))
	assert.Empty(t, ctx.Link(LinkDevices, 0))
	assert.NotEmpty(t, ctx.RunID())
}
