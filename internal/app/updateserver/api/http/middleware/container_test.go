package middleware

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestContainer_GetAllAndClear(t *testing.T) {
	c := NewContainer()
	c.Add(func(ctx huma.Context, next func(huma.Context)) { next(ctx) })
	c.Add(func(ctx huma.Context, next func(huma.Context)) { next(ctx) })

	got := c.GetAllAndClear()
	assert.Len(t, got, 2)
	assert.Empty(t, c.GetAllAndClear())
}
