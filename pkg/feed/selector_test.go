package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpost/pkg/domain"
)

func entriesWithIDs(ids ...string) []domain.Entry {
	res := make([]domain.Entry, len(ids))
	for i, id := range ids {
		res[i] = domain.Entry{ID: id}
	}
	return res
}

func idsOf(entries []domain.Entry) []string {
	res := make([]string, len(entries))
	for i, e := range entries {
		res[i] = e.ID
	}
	return res
}

func TestSelectNew_UnsetCursor(t *testing.T) {
	// first run backfills the whole visible window, oldest first
	got := SelectNew(entriesWithIDs("3", "2", "1"), "", GapRedeliver)
	assert.Equal(t, []string{"1", "2", "3"}, idsOf(got))
}

func TestSelectNew_CursorInWindow(t *testing.T) {
	got := SelectNew(entriesWithIDs("5", "4", "3"), "4", GapRedeliver)
	assert.Equal(t, []string{"5"}, idsOf(got))
}

func TestSelectNew_CursorAtNewest(t *testing.T) {
	// nothing new since the last delivery
	got := SelectNew(entriesWithIDs("5", "4", "3"), "5", GapRedeliver)
	assert.Empty(t, got)
}

func TestSelectNew_CursorRotatedOut(t *testing.T) {
	t.Run("redeliver policy returns the whole window", func(t *testing.T) {
		got := SelectNew(entriesWithIDs("9", "8", "7"), "4", GapRedeliver)
		assert.Equal(t, []string{"7", "8", "9"}, idsOf(got))
	})

	t.Run("skip policy returns nothing", func(t *testing.T) {
		got := SelectNew(entriesWithIDs("9", "8", "7"), "4", GapSkip)
		assert.Empty(t, got)
	})
}

func TestSelectNew_EmptyWindow(t *testing.T) {
	assert.Empty(t, SelectNew(nil, "", GapRedeliver))
	assert.Empty(t, SelectNew(nil, "4", GapRedeliver))
}

func TestSelectNew_DuplicateCursorID(t *testing.T) {
	// scan from the newest occurrence so repeated ids never resurface older entries
	got := SelectNew(entriesWithIDs("5", "4", "4", "3"), "4", GapRedeliver)
	require.Equal(t, []string{"5"}, idsOf(got))
}

func TestSelectNew_InputNotMutated(t *testing.T) {
	in := entriesWithIDs("3", "2", "1")
	_ = SelectNew(in, "", GapRedeliver)
	assert.Equal(t, []string{"3", "2", "1"}, idsOf(in))
}
