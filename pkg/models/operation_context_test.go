package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationContext_ActorFallsBackToSystem(t *testing.T) {
	var op *OperationContext

	assert.Equal(t, "System", op.Actor())
	assert.Equal(t, "System", (&OperationContext{}).Actor())
	assert.Equal(t, "alice", (&OperationContext{UserName: "alice"}).Actor())
}

func TestOperationContext_ActorID(t *testing.T) {
	id := (&OperationContext{UserID: "123"}).ActorID()
	require.NotNil(t, id)
	assert.Equal(t, int64(123), *id)

	assert.Nil(t, (&OperationContext{UserID: "not-a-number"}).ActorID())
	assert.Nil(t, (&OperationContext{}).ActorID())

	var op *OperationContext

	assert.Nil(t, op.ActorID())
}

func TestOperationContext_ClockDefaults(t *testing.T) {
	var op *OperationContext

	assert.NotNil(t, op.Clock())
	assert.False(t, (&OperationContext{}).Clock()().IsZero())
}
