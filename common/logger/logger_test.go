package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestRequestIDFromGinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	assert.Equal(t, "", RequestID(c))

	c.Set(RequestIDKey, "req-2")
	assert.Equal(t, "req-2", RequestID(c))
}

func TestFor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	For(WithRequestID(context.Background(), "req-3"), l).Info("hello")
	For(context.Background(), l).Info("bare")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "req-3", entries[0].ContextMap()["request_id"])
	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestInitialize(t *testing.T) {
	l := Initialize("production")
	assert.NotNil(t, l)
	assert.Same(t, l, Log)
}
