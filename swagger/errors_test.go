package swagger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := &Error{
			Kind:    InvalidDeclaration,
			Service: "api.Users",
			Method:  "get",
			Message: "malformed path",
			Err:     errors.New("unbalanced braces"),
		}
		assert.Equal(t, "swagger: invalid declaration: api.Users.get: malformed path: unbalanced braces", err.Error())
	})

	t.Run("message without method", func(t *testing.T) {
		err := &Error{Kind: CyclicSubResource, Service: "api.A", Message: "api.A -> api.A"}
		assert.Equal(t, "swagger: cyclic sub-resource: api.A: api.A -> api.A", err.Error())
	})

	t.Run("kind matching", func(t *testing.T) {
		var err error = fmt.Errorf("read: %w", &Error{Kind: UnsupportedShape})

		assert.ErrorIs(t, err, ErrUnsupportedShape)
		assert.NotErrorIs(t, err, ErrInvalidDeclaration)

		var target *Error
		require.ErrorAs(t, err, &target)
		assert.Equal(t, UnsupportedShape, target.Kind)
	})

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("cause")
		err := &Error{Kind: InvalidDeclaration, Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrInvalidDeclaration)
	})

	t.Run("kind names", func(t *testing.T) {
		assert.Equal(t, "unresolvable type", UnresolvableType.String())
		assert.Equal(t, "unknown error", ErrorKind(0).String())
	})
}
