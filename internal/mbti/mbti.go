// Package mbti scores the couple date-style quiz: four dimensions of nine yes/no questions each.
package mbti

import (
	"ieum/internal/apperr"
)

// Dimension codes; the first letter is the "A" side.
const (
	Planning  = "PF" // planner / flow
	Spending  = "MI" // measured / indulgent
	Conflict  = "DT" // direct / thoughtful
	Adventure = "EC" // explorer / comfort
)

type Question struct {
	ID        int    `json:"id"`
	Question  string `json:"question"`
	OptionA   string `json:"optionA"`
	OptionB   string `json:"optionB"`
	Dimension string `json:"dimension"`
}

var questions = []Question{
	{1, "We feel at ease only when the date is planned in advance.", "X", "O", Planning},
	{2, "Deciding on the spot on the day of the date is fine.", "X", "O", Planning},
	{3, "We change the date course depending on the mood of the day.", "X", "O", Planning},
	{4, "I usually fix the route and times before a date.", "O", "X", Planning},
	{5, "A date without a plan can be just as fun.", "X", "O", Planning},
	{6, "It is better to pick the place beforehand.", "O", "X", Planning},
	{7, "I like walking in wherever catches our eye.", "X", "O", Planning},
	{8, "Sudden changes of plan on the day are exciting.", "X", "O", Planning},
	{9, "A date that goes as planned is the most satisfying.", "O", "X", Planning},

	{10, "On a date, experience matters more than money.", "X", "O", Spending},
	{11, "I want to keep date spending reasonable.", "O", "X", Spending},
	{12, "On a special day a big bill is fine.", "X", "O", Spending},
	{13, "If it makes a memory, the money is not wasted.", "X", "O", Spending},
	{14, "It is good to agree on a spending cap in advance.", "O", "X", Spending},
	{15, "Going over the planned spend bothers me.", "O", "X", Spending},
	{16, "I can exceed the budget for a great experience.", "X", "O", Spending},
	{17, "If the cost feels heavy I cannot enjoy the date.", "O", "X", Spending},
	{18, "Recording date expenses is necessary.", "O", "X", Spending},

	{19, "I need time for my feelings to settle.", "X", "O", Conflict},
	{20, "When a problem comes up I want it solved that day.", "O", "X", Conflict},
	{21, "I am more comfortable talking after thinking alone.", "X", "O", Conflict},
	{22, "It is hard to talk before I have sorted my feelings.", "X", "O", Conflict},
	{23, "I want to check each other's thoughts right away.", "O", "X", Conflict},
	{24, "I want my time alone to think to be respected.", "X", "O", Conflict},
	{25, "Putting a problem off makes me anxious.", "O", "X", Conflict},
	{26, "Conversations go better once feelings have settled.", "X", "O", Conflict},
	{27, "I hate going to bed still fighting.", "O", "X", Conflict},

	{28, "Going somewhere new makes my heart flutter.", "X", "O", Adventure},
	{29, "Familiar places are the most comfortable.", "O", "X", Adventure},
	{30, "Our usual date spots feel stable.", "O", "X", Adventure},
	{31, "I am very interested in newly opened restaurants and spaces.", "X", "O", Adventure},
	{32, "A familiar routine is better.", "O", "X", Adventure},
	{33, "I want to try activities we have never done.", "X", "O", Adventure},
	{34, "Even when travelling I look for new places.", "X", "O", Adventure},
	{35, "Trying new things is fun.", "X", "O", Adventure},
	{36, "I want to try something new even if it fails.", "X", "O", Adventure},
}

// Questions returns a copy of the question bank.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Result is the computed type plus per-letter counts.
type Result struct {
	Type    string         `json:"mbtiType"`
	Details map[string]int `json:"details"`
}

// letter order of the type string
var typeOrder = []string{Spending, Conflict, Adventure, Planning}

// Score computes the type from answers keyed by question id. Every question needs an "A" or "B"
// answer. Within a dimension the majority wins and a tie goes to the A-side letter.
func Score(answers map[int]string) (*Result, error) {
	if len(answers) != len(questions) {
		return nil, apperr.BadRequest("All questions must be answered")
	}

	details := make(map[string]int, 8)
	for _, dim := range typeOrder {
		details[dim[:1]] = 0
		details[dim[1:]] = 0
	}
	for _, q := range questions {
		a, ok := answers[q.ID]
		if !ok {
			return nil, apperr.BadRequest("Missing answer for question %d", q.ID)
		}
		switch a {
		case "A":
			details[q.Dimension[:1]]++
		case "B":
			details[q.Dimension[1:]]++
		default:
			return nil, apperr.BadRequest("Invalid answer %q for question %d", a, q.ID)
		}
	}

	t := make([]byte, 0, len(typeOrder))
	for _, dim := range typeOrder {
		if details[dim[:1]] >= details[dim[1:]] {
			t = append(t, dim[0])
		} else {
			t = append(t, dim[1])
		}
	}
	return &Result{Type: string(t), Details: details}, nil
}

type Compatibility struct {
	Score       int      `json:"score"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	Challenges  []string `json:"challenges"`
}

var compatRules = []struct {
	weight    int
	strength  string
	challenge string
}{
	{15, "You think alike about date spending", "Talk about measured versus experience-first spending"},
	{10, "Your ways of resolving conflict fit well", "Respect talking right away versus needing time"},
	{10, "You like the same kind of date places", "Find a middle ground between exploring and familiar places"},
	{15, "Your date planning styles match", "Balance planned dates with spontaneous ones"},
}

// Compare scores two four-letter types: 50 plus the weight of every position where the letters match.
func Compare(a, b string) (*Compatibility, error) {
	if len(a) != len(typeOrder) || len(b) != len(typeOrder) {
		return nil, apperr.BadRequest("Invalid type pair %q/%q", a, b)
	}

	c := &Compatibility{Score: 50, Strengths: []string{}, Challenges: []string{}}
	for i, rule := range compatRules {
		if a[i] == b[i] {
			c.Score += rule.weight
			c.Strengths = append(c.Strengths, rule.strength)
		} else {
			c.Challenges = append(c.Challenges, rule.challenge)
		}
	}

	switch {
	case c.Score >= 80:
		c.Description = "A perfect match! You can understand each other deeply."
	case c.Score >= 60:
		c.Description = "A good match! You can grow through your differences."
	default:
		c.Description = "A challenging pair, but effort can build an even stronger bond."
	}
	return c, nil
}
