package lrgenerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflict_MessageAndKind(t *testing.T) {
	err := Conflict(4, "'+'", "shift/reduce", "synthesis aborted")
	assert.Equal(t, "conflict", Kind(err))
	assert.Contains(t, err.Error(), "state 4")
	assert.Contains(t, err.Error(), "shift/reduce")
}

func TestMissingRequiredConfig(t *testing.T) {
	err := MissingRequiredConfig("target")
	assert.Equal(t, "missing_config", Kind(err))
	assert.Contains(t, err.Error(), "target")
}

func TestWrapIO_UnwrapsToCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapIO("reading spec file", cause)

	assert.Equal(t, "io", Kind(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestKind_UnknownErrorReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", Kind(errors.New("plain error")))
}

func TestSpecSyntaxError_IncludesLine(t *testing.T) {
	err := SpecSyntaxError(12, "unexpected character")
	assert.Contains(t, err.Error(), "line 12")
}
