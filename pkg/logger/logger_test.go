package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestComponent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	Component(zap.New(core), "pipeline").Info("started")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "pipeline", entries[0].LoggerName)
	assert.Equal(t, "pipeline", entries[0].ContextMap()["component"])

	assert.NotPanics(t, func() { Component(nil, "x").Info("ignored") })
}
