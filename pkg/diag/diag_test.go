package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlslfe/compiler/pkg/token"
)

func TestUnimplementedfDoesNotRaiseStatus(t *testing.T) {
	pool := token.NewPool()
	sink := NewSink(pool)

	sink.Unimplementedf(token.Pos{}, "array initializer for %s", "float3[4]")

	assert.Equal(t, StatusOK, sink.Status())
	assert.False(t, sink.HasErrors())
	assert.Len(t, sink.Diagnostics(), 1)
	assert.Equal(t, SeverityUnimplemented, sink.Diagnostics()[0].Severity)
}

func TestErrorfRaisesStatus(t *testing.T) {
	pool := token.NewPool()
	sink := NewSink(pool)

	sink.Warningf(token.Pos{}, "unsupported register tag %q", "x0")
	assert.Equal(t, StatusWarning, sink.Status())

	sink.Errorf(token.Pos{}, "boom")
	assert.Equal(t, StatusError, sink.Status())

	sink.Warningf(token.Pos{}, "another warning")
	assert.Equal(t, StatusError, sink.Status(), "status must never move backward")
}

func TestNotefDoesNotRaiseStatus(t *testing.T) {
	pool := token.NewPool()
	sink := NewSink(pool)

	sink.Notef(token.Pos{}, "previous declaration is here")
	assert.Equal(t, StatusOK, sink.Status())
}
