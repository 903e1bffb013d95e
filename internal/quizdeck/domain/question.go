package domain

import (
	"strings"
	"time"
)

// AnswerLetters are the valid correct-answer values.
var AnswerLetters = []string{"A", "B", "C", "D"}

// ValidAnswerLetter reports whether s names one of the four options,
// case-insensitively.
func ValidAnswerLetter(s string) bool {
	switch strings.ToUpper(s) {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// Question is a four-option multiple-choice question belonging to exactly
// one category. CorrectAnswer is one of A, B, C, D.
type Question struct {
	ID            string
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Explanation   string // optional
	CategoryID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
