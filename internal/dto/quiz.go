package dto

// QuizQuestionResponse is a single multiple-choice question.
// @Description Multiple-choice question
type QuizQuestionResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Choices  []string `json:"choices"`
}

// QuizResponse is a generated quiz.
// @Description Generated quiz
type QuizResponse struct {
	Questions       []QuizQuestionResponse `json:"questions"`
	TotalVocabulary int                    `json:"total_vocabulary"`
	RequestedCount  int                    `json:"requested_count"`
	QuestionCount   int                    `json:"question_count"`
}

// HealthResponse reports dependency status.
// @Description Service health
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
