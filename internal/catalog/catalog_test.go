package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
)

func TestBuiltin_PickHonorsCount(t *testing.T) {
	b := NewBuiltin(nil)

	got, err := b.Pick(context.Background(), Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID, "picked problems must be distinct")
}

func TestBuiltin_FilterByDifficulty(t *testing.T) {
	b := NewBuiltin(nil)

	got, err := b.Pick(context.Background(), Filter{Difficulty: "easy"}, 2)
	require.NoError(t, err)
	for _, p := range got {
		assert.Equal(t, "easy", p.Difficulty)
	}
}

func TestBuiltin_FilterByTopic(t *testing.T) {
	b := NewBuiltin(nil)

	got, err := b.Pick(context.Background(), Filter{Topics: []string{"sliding-window"}}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Tags, "sliding-window")
}

func TestBuiltin_NotEnoughProblems(t *testing.T) {
	b := NewBuiltin([]battle.Problem{{ID: "only-one", Difficulty: "easy"}})

	_, err := b.Pick(context.Background(), Filter{}, 2)
	assert.True(t, errors.Is(err, ErrNotEnoughProblems))

	_, err = b.Pick(context.Background(), Filter{Difficulty: "hard"}, 1)
	assert.True(t, errors.Is(err, ErrNotEnoughProblems), "a filter that matches nothing cannot satisfy any pick")
}

func TestBuiltin_HandoutsAreDetached(t *testing.T) {
	b := NewBuiltin(nil)

	first, err := b.Pick(context.Background(), Filter{}, 4)
	require.NoError(t, err)

	// A room scribbling on its problem set must not bleed into other rooms.
	for i := range first {
		first[i].Snippets["cpp"] = "clobbered"
		if len(first[i].Tags) > 0 {
			first[i].Tags[0] = "clobbered"
		}
		if len(first[i].TestCases) > 0 {
			first[i].TestCases[0].Expected = "clobbered"
		}
	}

	second, err := b.Pick(context.Background(), Filter{}, 4)
	require.NoError(t, err)
	for _, p := range second {
		assert.NotEqual(t, "clobbered", p.Snippets["cpp"], "snippet shared across handouts: %s", p.ID)
		for _, tag := range p.Tags {
			assert.NotEqual(t, "clobbered", tag, "tags shared across handouts: %s", p.ID)
		}
		for _, tc := range p.TestCases {
			assert.NotEqual(t, "clobbered", tc.Expected, "test cases shared across handouts: %s", p.ID)
		}
	}
}

func TestBuiltin_StarterSetIsUsable(t *testing.T) {
	b := NewBuiltin(nil)

	got, err := b.Pick(context.Background(), Filter{}, 4)
	require.NoError(t, err)
	for _, p := range got {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.TestCases, "problem %s has no test cases", p.ID)
		assert.Contains(t, p.Snippets, "cpp", "problem %s has no cpp snippet", p.ID)
	}
}
