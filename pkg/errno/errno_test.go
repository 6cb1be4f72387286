package errno

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeCode(t *testing.T) {
	assert.Equal(t, 1001, MakeCode(ServiceCommon, CategoryRequest, 1))
	assert.Equal(t, 2005001, MakeCode(ServiceGovernance, CategoryConflict, 1))
	assert.Equal(t, 2004002, MakeCode(ServiceGovernance, CategoryResource, 2))
}

func TestErrno_Is(t *testing.T) {
	wrapped := ErrAgentNotFound.WithMessage("agent 7 not found")
	assert.ErrorIs(t, wrapped, ErrAgentNotFound)
	assert.NotErrorIs(t, wrapped, ErrKnowledgeNotFound)

	caused := ErrGateway.WithCause(errors.New("quota exceeded"))
	assert.ErrorIs(t, caused, ErrGateway)
}

func TestErrno_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrDatabase.WithCause(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrno_WithMessageDoesNotMutateSentinel(t *testing.T) {
	before := ErrInternal.Message
	_ = ErrInternal.WithMessagef("step %d failed", 3)
	assert.Equal(t, before, ErrInternal.Message)
}

func TestErrno_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Errno
		want int
	}{
		{ErrBadRequest, http.StatusBadRequest},
		{ErrAgentNotFound, http.StatusNotFound},
		{ErrAgentExists, http.StatusNotFound},
		{ErrDuplicateLink, http.StatusConflict},
		{ErrGateway, http.StatusInternalServerError},
		{ErrCredentialsUnavailable, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("code_%d", tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestRegistry_AllSentinelsRegistered(t *testing.T) {
	sentinels := []*Errno{
		ErrBadRequest, ErrNotFound, ErrInternal, ErrDatabase,
		ErrAgentExists, ErrAgentNotFound, ErrKnowledgeNotFound,
		ErrStorageAccountNotFound, ErrGateway, ErrCredentialsUnavailable,
		ErrInference, ErrDuplicateLink,
	}

	seen := make(map[int]*Errno, len(sentinels))
	for _, e := range sentinels {
		if prev, ok := seen[e.Code]; ok {
			t.Fatalf("code %d assigned to both %q and %q", e.Code, prev.Message, e.Message)
		}
		seen[e.Code] = e

		got, ok := Lookup(e.Code)
		require.True(t, ok, "code %d not registered", e.Code)
		assert.Same(t, e, got)
	}
}

func TestLookup(t *testing.T) {
	got, ok := Lookup(ErrAgentExists.Code)
	require.True(t, ok)
	assert.Equal(t, "Error - agent already exists.", got.Message)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}
