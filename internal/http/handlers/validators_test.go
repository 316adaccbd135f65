package handlers_test

import (
	"testing"

	"github.com/geocoder89/parkingcontrol/internal/http/handlers"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators_InstallsNotBlank(t *testing.T) {
	require.NotPanics(t, handlers.RegisterValidators)
	require.NotPanics(t, handlers.RegisterValidators)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	assert.Error(t, v.Var("   ", "notblank"))
	assert.NoError(t, v.Var("A1", "notblank"))
}
