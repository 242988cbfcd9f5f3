package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pa-prabumulih/sicantik-api/api"
)

func TestWithQueryTimeout(t *testing.T) {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(api.QueryTimeout), deadline, time.Second)
}

func TestWithQueryTimeoutNilParent(t *testing.T) {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.True(t, ok)
}
