package docdiff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeIdenticalIsEmpty(t *testing.T) {
	require.Empty(t, Compute("same\ncontent\n", "same\ncontent\n"))
}

func TestComputeMarksAddedAndRemovedLines(t *testing.T) {
	d := Compute("start\nalpha\nend\n", "start\nzzzzz\nend\n")
	require.Contains(t, d, "- alpha")
	require.Contains(t, d, "+ zzzzz")
	require.Contains(t, d, "start")
	require.Contains(t, d, "end")
}
