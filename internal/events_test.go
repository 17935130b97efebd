package internal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
)

func TestEventNames(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, len(internal.Events()))
	for _, e := range internal.Events() {
		names = append(names, e.String())
	}
	require.Equal(t, []string{
		"initialized",
		"beforeroute",
		"afterroute",
		"beforeload",
		"afterload",
		"beforeerrorhandling",
		"aftererrorhandling",
		"beforerender",
		"afterrender",
		"beginshutdown",
	}, names)
	require.Equal(t, "event(42)", internal.Event(42).String())
}

func TestEventBus(t *testing.T) {
	t.Parallel()

	t.Run("fires in subscription order", func(t *testing.T) {
		t.Parallel()
		var got []string
		bus := &internal.EventBus{}
		bus.On(internal.EventBeforeRender, func(internal.Context) error { got = append(got, "first"); return nil })
		bus.On(internal.EventAfterRender, func(internal.Context) error { got = append(got, "other"); return nil })
		bus.On(internal.EventBeforeRender, func(internal.Context) error { got = append(got, "second"); return nil })
		bus.On(internal.EventBeforeRender, nil)
		require.Equal(t, 3, bus.Len())

		require.NoError(t, bus.Fire(newStubContext(t, "/"), internal.EventBeforeRender))
		require.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("first error stops firing", func(t *testing.T) {
		t.Parallel()
		errStop := errors.New("stop")
		var got []string
		bus := &internal.EventBus{}
		bus.On(internal.EventBeforeLoad, func(internal.Context) error { return errStop })
		bus.On(internal.EventBeforeLoad, func(internal.Context) error { got = append(got, "late"); return nil })

		err := bus.Fire(newStubContext(t, "/"), internal.EventBeforeLoad)
		require.ErrorIs(t, err, errStop)
		require.Contains(t, err.Error(), "beforeload listener")
		require.Empty(t, got)
	})
}
