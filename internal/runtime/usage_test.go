package runtime

import (
	"context"
	"testing"

	"github.com/ofekfell/mediaflow/internal/testutils"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_CountsEveryOccurrence(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	b := testutils.WriteMedia(t, dir, "b.mp4")

	trimmed, err := dsl.Trim(a, 0, 1)
	require.NoError(t, err)
	root, err := dsl.Concat([]any{a, trimmed, b, a})
	require.NoError(t, err)

	resolver := &testutils.LocalResolver{}
	usage, err := Scan(context.Background(), root, resolver)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{a: 3, b: 1}, usage.Map())
	assert.Equal(t, []string{a, b}, usage.Paths())
	assert.Equal(t, 4, resolver.Calls, "one resolution per occurrence without memoization")
}

func TestScan_IndependentOfOrder(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")
	b := testutils.WriteMedia(t, dir, "b.mp4")

	first, err := dsl.Concat([]string{a, b, a})
	require.NoError(t, err)
	second, err := dsl.Concat([]string{b, a, a})
	require.NoError(t, err)

	u1, err := Scan(context.Background(), first, &testutils.LocalResolver{})
	require.NoError(t, err)
	u2, err := Scan(context.Background(), second, &testutils.LocalResolver{})
	require.NoError(t, err)
	assert.Equal(t, u1.Map(), u2.Map())
}

func TestScan_ResolutionFailure(t *testing.T) {
	root, err := dsl.Blur("/no/such/file.mp4", 2)
	require.NoError(t, err)

	_, err = Scan(context.Background(), root, &testutils.LocalResolver{})
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestMemoResolver(t *testing.T) {
	dir := t.TempDir()
	a := testutils.WriteMedia(t, dir, "a.mp4")

	inner := &testutils.LocalResolver{}
	m := newMemoResolver(inner)
	for i := 0; i < 3; i++ {
		p, err := m.Resolve(context.Background(), a)
		require.NoError(t, err)
		assert.Equal(t, a, p)
	}
	assert.Equal(t, 1, inner.Calls)

	t.Chdir(dir)

	p, err := newMemoResolver(inner).Resolve(context.Background(), "a.mp4")
	require.NoError(t, err)
	assert.Equal(t, a, p, "relative references become absolute")
}
