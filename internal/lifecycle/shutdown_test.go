package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	s := NewShutdown(nil)

	var order []string
	for _, name := range []string{"database", "redis", "queue"} {
		name := name
		s.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	s.Register("ignored", nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"queue", "redis", "database"}, order)
}

func TestShutdownCollectsErrors(t *testing.T) {
	s := NewShutdown(nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	ran := 0
	s.Register("a", func(context.Context) error { ran++; return errA })
	s.Register("ok", func(context.Context) error { ran++; return nil })
	s.Register("b", Closer(func() error { ran++; return errB }))

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "b: b failed")
	assert.Equal(t, 3, ran)
}

func TestShutdownRunsOnce(t *testing.T) {
	s := NewShutdown(nil)
	calls := 0
	s.Register("once", func(context.Context) error { calls++; return nil })

	require.NoError(t, s.Execute(context.Background()))
	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, 1, calls)
}
