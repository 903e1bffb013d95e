package domain

// QuizAnswer is one submitted answer: a question id and the selected letter.
type QuizAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

// QuizResult is the outcome of a quiz submission. TotalQuestions is the
// number of answers submitted, not the number of questions in the category;
// unknown or duplicate question ids inflate the denominator without ever
// counting as correct.
type QuizResult struct {
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
	CategoryName    string  `json:"category_name"`
}
