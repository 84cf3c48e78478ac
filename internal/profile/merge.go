package profile

import "fmt"

// Merge folds one completed quiz into a topic's cumulative counters.
// The merge is strictly additive: counters never decrease and are never
// replaced. QuizzesTaken increments by exactly 1 per call, so each call
// must represent exactly one completed quiz.
//
// Preconditions: deltaQuestions >= 0 and 0 <= deltaCorrect <= deltaQuestions.
func Merge(current TopicKnowledge, deltaQuestions, deltaCorrect int) (TopicKnowledge, error) {
	if deltaQuestions < 0 {
		return current, fmt.Errorf("merge: negative question delta %d", deltaQuestions)
	}
	if deltaCorrect < 0 || deltaCorrect > deltaQuestions {
		return current, fmt.Errorf("merge: correct delta %d out of range [0, %d]", deltaCorrect, deltaQuestions)
	}
	return TopicKnowledge{
		TotalQuestions: current.TotalQuestions + deltaQuestions,
		CorrectAnswers: current.CorrectAnswers + deltaCorrect,
		QuizzesTaken:   current.QuizzesTaken + 1,
	}, nil
}
