package router

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenAPIDocument keeps the published API document valid and in sync
// with the registered v1 routes.
func TestOpenAPIDocument(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, "BrewPass API", doc.Info.Title)

	expectedPaths := []string{
		"/auth/signup",
		"/auth/login",
		"/profile",
		"/plans",
		"/subscriptions",
		"/subscriptions/{id}",
		"/redeem",
		"/admin/users",
		"/admin/redeem",
		"/admin/redeem/{id}",
		"/payments/webhook",
	}
	for _, p := range expectedPaths {
		assert.NotNil(t, doc.Paths.Find(p), "missing path %s", p)
	}
}
