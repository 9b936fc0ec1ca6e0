package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMirror_NeverErrors(t *testing.T) {
	var m GraphMirror = NoopMirror{}
	ctx := context.Background()

	assert.NoError(t, m.MirrorConcept(ctx, "bird", 0.5))
	assert.NoError(t, m.MirrorLink(ctx, "robin", "bird", true, 1.0))
	assert.NoError(t, m.RemoveConcept(ctx, "bird"))
	assert.NoError(t, m.Close(ctx))
}
