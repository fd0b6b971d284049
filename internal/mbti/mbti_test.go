package mbti

import (
	"testing"

	"ieum/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answersFor answers every question of dim with "A" for the first aCount questions and "B" after.
func answersFor(base map[int]string, dim string, aCount int) {
	n := 0
	for _, q := range questions {
		if q.Dimension != dim {
			continue
		}
		if n < aCount {
			base[q.ID] = "A"
		} else {
			base[q.ID] = "B"
		}
		n++
	}
}

func TestQuestions_Bank(t *testing.T) {
	qs := Questions()
	require.Len(t, qs, 36)

	perDim := map[string]int{}
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID)
		perDim[q.Dimension]++
	}
	assert.Equal(t, map[string]int{Planning: 9, Spending: 9, Conflict: 9, Adventure: 9}, perDim)

	qs[0].Question = "changed"
	assert.NotEqual(t, "changed", Questions()[0].Question)
}

func TestScore_Majority(t *testing.T) {
	answers := map[int]string{}
	answersFor(answers, Spending, 9)  // M
	answersFor(answers, Conflict, 2)  // T
	answersFor(answers, Adventure, 5) // E
	answersFor(answers, Planning, 4)  // F

	res, err := Score(answers)
	require.NoError(t, err)
	assert.Equal(t, "MTEF", res.Type)
	assert.Equal(t, 9, res.Details["M"])
	assert.Equal(t, 0, res.Details["I"])
	assert.Equal(t, 7, res.Details["T"])
	assert.Equal(t, 5, res.Details["F"])
}

func TestScore_AllB(t *testing.T) {
	answers := map[int]string{}
	for _, q := range questions {
		answers[q.ID] = "B"
	}
	res, err := Score(answers)
	require.NoError(t, err)
	assert.Equal(t, "ITCF", res.Type)
}

func TestScore_Errors(t *testing.T) {
	full := func() map[int]string {
		m := map[int]string{}
		for _, q := range questions {
			m[q.ID] = "A"
		}
		return m
	}

	t.Run("too few answers", func(t *testing.T) {
		m := full()
		delete(m, 3)
		_, err := Score(m)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.EqualError(t, err, "All questions must be answered")
	})

	t.Run("unknown question id", func(t *testing.T) {
		m := full()
		delete(m, 7)
		m[99] = "A"
		_, err := Score(m)
		assert.EqualError(t, err, "Missing answer for question 7")
	})

	t.Run("invalid answer", func(t *testing.T) {
		m := full()
		m[12] = "C"
		_, err := Score(m)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		score      int
		strengths  int
		descPrefix string
	}{
		{"identical", "MDEP", "MDEP", 100, 4, "A perfect match"},
		{"opposite", "MDEP", "ITCF", 50, 0, "A challenging pair"},
		{"spending and planning", "MDEP", "MTCP", 80, 2, "A perfect match"},
		{"conflict only", "MDEP", "IDCF", 60, 1, "A good match"},
		{"adventure only", "MDEP", "ITEF", 60, 1, "A good match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.score, c.Score)
			assert.Len(t, c.Strengths, tt.strengths)
			assert.Len(t, c.Challenges, 4-tt.strengths)
			assert.Contains(t, c.Description, tt.descPrefix)
		})
	}

	_, err := Compare("MD", "MDEP")
	assert.Error(t, err)
}
