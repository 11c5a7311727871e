package scoring

import (
	"sort"

	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
)

// UserScore is derived on demand and never stored.
type UserScore struct {
	UserID      string
	DisplayName string
	Correct     int
	Graded      int
}

// Accuracy is the percentage of graded picks that were correct.
func (s UserScore) Accuracy() float64 {
	if s.Graded == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Graded) * 100
}

// Points awarded on the leaderboard, one per correct pick.
func (s UserScore) Points() int {
	return s.Correct
}

type Grade int

const (
	GradeUndecided Grade = iota
	GradeInvalid
	GradeIncorrect
	GradeCorrect
)

// GradePick compares p against o.
func GradePick(p pick.Pick, o outcome.Outcome) Grade {
	if !p.ChoiceIsTeam() {
		return GradeInvalid
	}
	if !o.Decided {
		return GradeUndecided
	}
	if p.Choice == o.Winner {
		return GradeCorrect
	}
	return GradeIncorrect
}

// Tally accumulates per-user counts in first-seen user order.
type Tally struct {
	order  []string
	byUser map[string]*UserScore
}

func NewTally() *Tally {
	return &Tally{byUser: make(map[string]*UserScore)}
}

// Register makes sure userID is emitted even with zero graded picks.
func (t *Tally) Register(userID string) {
	if _, ok := t.byUser[userID]; ok {
		return
	}
	t.order = append(t.order, userID)
	t.byUser[userID] = &UserScore{UserID: userID, DisplayName: userID}
}

func (t *Tally) Record(userID string, grade Grade) {
	t.Register(userID)
	score := t.byUser[userID]
	switch grade {
	case GradeCorrect:
		score.Correct++
		score.Graded++
	case GradeIncorrect:
		score.Graded++
	}
}

func (t *Tally) SetDisplayName(userID, name string) {
	t.Register(userID)
	t.byUser[userID].DisplayName = name
}

func (t *Tally) UserIDs() []string {
	return append([]string(nil), t.order...)
}

func (t *Tally) Scores() []UserScore {
	out := make([]UserScore, 0, len(t.order))
	for _, userID := range t.order {
		out = append(out, *t.byUser[userID])
	}
	return out
}

// SortByCorrect orders scores by correct count descending. Ties keep their input order.
func SortByCorrect(scores []UserScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Correct > scores[j].Correct
	})
}
