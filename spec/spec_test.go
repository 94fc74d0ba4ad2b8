package spec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/shareit/backend/spec"
)

func TestOpenAPIEmbedded(t *testing.T) {
	doc := string(spec.OpenAPI)

	assert.True(t, strings.HasPrefix(doc, "openapi: 3."), "embedded file should be an OpenAPI 3 document")
	for _, path := range []string{"/bookings:", "/bookings/owner:", "/bookings/{bookingId}:", "/items/{itemId}/bookings:"} {
		assert.Contains(t, doc, path)
	}
}
