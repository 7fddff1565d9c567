package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feudQuestions() []FeudQuestion {
	return []FeudQuestion{
		{
			Prompt: "Name something you add to coffee",
			Answers: []FeudAnswer{
				{Text: "Milk", Rank: 1, Points: 40},
				{Text: "Sugar", Rank: 2, Points: 30},
				{Text: "Cream", Rank: 3, Points: 20},
			},
		},
		{
			Prompt: "Name a pastry",
			Answers: []FeudAnswer{
				{Text: "Croissant", Rank: 1, Points: 50},
				{Text: "Danish", Rank: 2, Points: 25},
			},
		},
	}
}

func TestFeudThreeStrikes(t *testing.T) {
	f, err := NewFeudRound(feudQuestions())
	require.NoError(t, err)

	for i := 1; i <= MaxStrikes; i++ {
		res, err := f.Guess("tea")
		require.NoError(t, err)
		assert.Equal(t, OutcomeStrike, res.Outcome)
		assert.Equal(t, i, f.Strikes())
	}
	assert.Equal(t, FeudRoundOver, f.Phase())
	assert.Equal(t, []int{0, 1, 2}, f.Revealed())
	assert.Equal(t, 0, f.Score())

	_, err = f.Guess("milk")
	assert.ErrorIs(t, err, ErrRoundNotActive)
	assert.Equal(t, 0, f.Score())
}

func TestFeudRevealAndDuplicate(t *testing.T) {
	f, err := NewFeudRound(feudQuestions())
	require.NoError(t, err)

	res, err := f.Guess("  MILK ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRevealed, res.Outcome)
	assert.Equal(t, 0, res.Answer)
	assert.Equal(t, 40, f.Score())

	_, err = f.Guess("milk")
	assert.ErrorIs(t, err, ErrDuplicateAnswer)
	assert.Equal(t, 0, f.Strikes())

	_, err = f.Guess("   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, 0, f.Strikes())
	assert.Equal(t, 40, f.Score())
}

func TestFeudClearBoardThenAdvance(t *testing.T) {
	f, err := NewFeudRound(feudQuestions())
	require.NoError(t, err)

	assert.ErrorIs(t, f.Advance(), ErrRoundNotOver)

	for _, a := range []string{"milk", "sugar", "cream"} {
		_, err := f.Guess(a)
		require.NoError(t, err)
	}
	assert.Equal(t, FeudRoundOver, f.Phase())
	assert.Equal(t, 90, f.Score())

	require.NoError(t, f.Advance())
	assert.Equal(t, FeudPlaying, f.Phase())
	assert.Equal(t, 1, f.QuestionIndex())
	assert.Equal(t, 0, f.Strikes())
	assert.Empty(t, f.Revealed())

	_, err = f.Guess("tea")
	require.NoError(t, err)
	_, err = f.Guess("croissant")
	require.NoError(t, err)
	_, err = f.Guess("bagel")
	require.NoError(t, err)
	_, err = f.Guess("muffin")
	require.NoError(t, err)
	assert.Equal(t, FeudRoundOver, f.Phase())
	assert.Equal(t, 140, f.Score())

	require.NoError(t, f.Advance())
	assert.Equal(t, FeudSessionComplete, f.Phase())
	assert.ErrorIs(t, f.Advance(), ErrRoundNotOver)
	_, err = f.Guess("danish")
	assert.ErrorIs(t, err, ErrRoundNotActive)
}

func TestFeudSnapshotRoundTrip(t *testing.T) {
	f, err := NewFeudRound(feudQuestions())
	require.NoError(t, err)
	_, _ = f.Guess("sugar")
	_, _ = f.Guess("tea")

	g, err := RestoreFeudRound(feudQuestions(), f.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, f.Snapshot(), g.Snapshot())
	assert.True(t, g.IsRevealed(1))
	assert.Equal(t, 1, g.Strikes())
}

func TestRestoreFeudRoundRejectsBrokenSnapshots(t *testing.T) {
	bad := []FeudSnapshot{
		{QuestionIndex: 5, Phase: FeudPlaying},
		{Strikes: 4, Phase: FeudPlaying},
		{Revealed: []int{7}, Phase: FeudPlaying},
		{Strikes: 3, Phase: FeudPlaying},
		{Strikes: 1, Phase: FeudRoundOver},
		{Strikes: 3, Phase: FeudSessionComplete},
		{Phase: "paused"},
	}
	for _, s := range bad {
		_, err := RestoreFeudRound(feudQuestions(), s)
		assert.ErrorIs(t, err, ErrInvalidState, "%+v", s)
	}
}

func TestNewFeudRoundNeedsQuestions(t *testing.T) {
	_, err := NewFeudRound(nil)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = NewFeudRound([]FeudQuestion{{Prompt: "empty"}})
	assert.ErrorIs(t, err, ErrInvalidState)
}
