package support

import (
	"fmt"
	"sort"
)

// Priority orders recommendations for display. Urgent items always surface
// first.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Option is one selectable answer to a question.
type Option struct {
	Value string
	Label string
}

// Question is a node in the guided support flow. Condition gates whether
// the question applies given the answers so far; a nil condition always
// applies.
type Question struct {
	ID        string
	Prompt    string
	Options   []Option
	Condition func(answers map[string]string) bool
}

func (q *Question) hasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Resource is an external support service. Phone, URL and Email are each
// optional; a resource carries whichever contact channels it actually has.
type Resource struct {
	Name        string
	Phone       string
	URL         string
	Email       string
	Description string
}

// Recommendation pairs a resource with situation-specific advice. Details
// is an ordered sequence of concrete steps; rules with nothing beyond the
// advice line leave it empty.
type Recommendation struct {
	Priority Priority
	Resource Resource
	Advice   string
	Details  []string
}

type rule struct {
	applies func(answers map[string]string) bool
	build   func(answers map[string]string) Recommendation
}

// Tree holds the question flow and recommendation rules. The zero value is
// unusable; construct with NewTree.
type Tree struct {
	questions []Question
	rules     []rule
}

// NewTree builds the scam support flow.
func NewTree() *Tree {
	return &Tree{questions: defaultQuestions, rules: defaultRules}
}

// Answer records one given answer in order.
type Answer struct {
	QuestionID string
	Value      string
}

// Session is one user's walk through the tree. Answers are an ordered list
// so stepping back is a truncation, never a rewrite.
type Session struct {
	tree    *Tree
	answers []Answer
}

// NewSession starts a fresh walk.
func (t *Tree) NewSession() *Session {
	return &Session{tree: t}
}

// Answers returns the answers given so far, keyed by question id.
func (s *Session) Answers() map[string]string {
	m := make(map[string]string, len(s.answers))
	for _, a := range s.answers {
		m[a.QuestionID] = a.Value
	}
	return m
}

// Current returns the next applicable unanswered question, or nil when the
// flow is complete. Questions whose condition fails are skipped, so a
// prevention-only walk ends after the first answer.
func (s *Session) Current() *Question {
	answers := s.Answers()
	for i := range s.tree.questions {
		q := &s.tree.questions[i]
		if q.Condition != nil && !q.Condition(answers) {
			continue
		}
		if _, answered := answers[q.ID]; !answered {
			return q
		}
	}
	return nil
}

// Done reports whether every applicable question has been answered.
func (s *Session) Done() bool {
	return s.Current() == nil
}

// Answer records the value for the current question. The value must be one
// of the question's options.
func (s *Session) Answer(value string) error {
	q := s.Current()
	if q == nil {
		return fmt.Errorf("no question pending")
	}
	if !q.hasOption(value) {
		return fmt.Errorf("invalid answer %q for question %s", value, q.ID)
	}
	s.answers = append(s.answers, Answer{QuestionID: q.ID, Value: value})
	return nil
}

// Back removes the most recent answer. Calling it with no answers is a
// no-op.
func (s *Session) Back() {
	if len(s.answers) > 0 {
		s.answers = s.answers[:len(s.answers)-1]
	}
}

// Recommendations evaluates the rules against the answers given so far and
// returns them ordered urgent first. Ordering within a priority follows
// rule declaration order.
func (s *Session) Recommendations() []Recommendation {
	answers := s.Answers()
	var recs []Recommendation
	for _, r := range s.tree.rules {
		if r.applies(answers) {
			recs = append(recs, r.build(answers))
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}
