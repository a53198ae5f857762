package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avi3tal/functionsagent/pkg/node"
)

func oversizedStream() string {
	return `{"chatInput":"one"}` + "\n" + strings.Repeat("a", 11<<20) + "\n" + `{"chatInput":"two"}` + "\n"
}

func TestStreamListenerReadError(t *testing.T) {
	t.Parallel()

	l := NewStreamListener(strings.NewReader(oversizedStream()))
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	items, err := l.WaitForEvent(ctx)
	require.NoError(t, err)
	require.Equal(t, "one", items[0].JSON["chatInput"])

	_, err = l.WaitForEvent(ctx)
	require.ErrorIs(t, err, bufio.ErrTooLong)

	for range 2 {
		_, err = l.WaitForEvent(ctx)
		require.ErrorIs(t, err, io.EOF)
	}
	require.NoError(t, ctx.Err())
}

func TestStartEndsAfterReadError(t *testing.T) {
	t.Parallel()

	cb := &recordingCallback{}
	app, err := NewApp(upperNode(), node.Parameters{"text": "{{ .chatInput }}"},
		WithListener(NewStreamListener(strings.NewReader(oversizedStream()))), WithCallback(cb))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))

	require.Len(t, cb.completed, 1)
	require.Len(t, cb.errs, 1)
	require.ErrorIs(t, cb.errs[0], bufio.ErrTooLong)
}

func TestStreamListenerCloseStopsReader(t *testing.T) {
	t.Parallel()

	l := NewStreamListener(strings.NewReader("{}\n{}\n{}\n"))
	_, err := l.WaitForEvent(context.Background())
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	select {
	case <-l.exited:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after Close")
	}
}
