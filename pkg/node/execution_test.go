package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeParameter(t *testing.T) {
	t.Parallel()

	items := []Item{
		NewItem(map[string]any{"chatInput": "hello"}),
		NewItem(map[string]any{"chatInput": "world"}),
	}
	exec := NewExecution(Parameters{
		"mode":  "runOnceForEachItem",
		"text":  "{{ .chatInput }}!",
		"limit": 3,
	}, items)

	t.Run("renders expressions per item", func(t *testing.T) {
		t.Parallel()
		v, err := exec.NodeParameter("text", 0)
		require.NoError(t, err)
		require.Equal(t, "hello!", v)

		v, err = exec.NodeParameter("text", 1)
		require.NoError(t, err)
		require.Equal(t, "world!", v)
	})

	t.Run("returns literals unchanged", func(t *testing.T) {
		t.Parallel()
		v, err := exec.NodeParameter("mode", 1)
		require.NoError(t, err)
		require.Equal(t, "runOnceForEachItem", v)

		v, err = exec.NodeParameter("limit", 0)
		require.NoError(t, err)
		require.Equal(t, 3, v)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		t.Parallel()
		_, err := exec.NodeParameter("missing", 0)
		require.ErrorIs(t, err, ErrUnknownParameter)
	})

	t.Run("index out of range", func(t *testing.T) {
		t.Parallel()
		_, err := exec.NodeParameter("text", 2)
		require.ErrorIs(t, err, ErrItemIndexOutOfRange)
	})

	t.Run("missing key in item", func(t *testing.T) {
		t.Parallel()
		other := NewExecution(Parameters{"text": "{{ .question }}"}, items)
		_, err := other.NodeParameter("text", 0)
		require.Error(t, err)
	})
}

func TestNodeParameterEmptyBatch(t *testing.T) {
	t.Parallel()

	exec := NewExecution(Parameters{"text": "{{ \"static\" }}"}, nil)
	v, err := exec.NodeParameter("text", 0)
	require.NoError(t, err)
	require.Equal(t, "static", v)

	_, err = exec.NodeParameter("text", 1)
	require.ErrorIs(t, err, ErrItemIndexOutOfRange)

	exec = NewExecution(Parameters{"text": "{{ .chatInput }}"}, nil)
	_, err = exec.NodeParameter("text", 0)
	require.ErrorContains(t, err, "chatInput")
}

func TestPrepareOutputData(t *testing.T) {
	t.Parallel()

	exec := NewExecution(nil, nil, WithExecutionID("exec-1"))
	require.Equal(t, "exec-1", exec.ID())
	require.NotNil(t, exec.Logger())

	out, err := exec.PrepareOutputData([]Item{NewItem(map[string]any{"output": "a"})})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "a", out[0][0].JSON["output"])

	empty, err := exec.PrepareOutputData(nil)
	require.NoError(t, err)
	require.Equal(t, [][]Item{{}}, empty)
}
