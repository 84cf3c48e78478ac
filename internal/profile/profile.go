package profile

import "strings"

// Profile is the per-user learning record: identity plus cumulative
// knowledge for every topic the user has been quizzed on.
type Profile struct {
	// ID is the opaque user identifier assigned at account creation.
	ID string `json:"id"`

	// Username is unique within the remote store. Uniqueness is enforced
	// by the store, not here.
	Username string `json:"username"`

	// KnowledgeByTopic maps normalized topic name to cumulative counters.
	KnowledgeByTopic map[string]TopicKnowledge `json:"knowledgeByTopic"`
}

// New returns a Profile with an empty knowledge map.
func New(id, username string) *Profile {
	return &Profile{
		ID:               id,
		Username:         username,
		KnowledgeByTopic: make(map[string]TopicKnowledge),
	}
}

// Knowledge returns the TopicKnowledge for topic (normalized), or the
// zero value if the topic has never been studied.
func (p *Profile) Knowledge(topic string) TopicKnowledge {
	return p.KnowledgeByTopic[NormalizeTopic(topic)]
}

// SetKnowledge stores tk under the normalized topic name, allocating the
// map if the profile was deserialized without one.
func (p *Profile) SetKnowledge(topic string, tk TopicKnowledge) {
	if p.KnowledgeByTopic == nil {
		p.KnowledgeByTopic = make(map[string]TopicKnowledge)
	}
	p.KnowledgeByTopic[NormalizeTopic(topic)] = tk
}

// Topics returns the topic names present in the knowledge map.
// Order is unspecified.
func (p *Profile) Topics() []string {
	topics := make([]string, 0, len(p.KnowledgeByTopic))
	for t := range p.KnowledgeByTopic {
		topics = append(topics, t)
	}
	return topics
}

// TopicKnowledge holds the cumulative counters for one topic. All three
// counters are monotonically non-decreasing; updates go through Merge,
// never through direct replacement.
type TopicKnowledge struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	QuizzesTaken   int `json:"quizzesTaken"`
}

// Accuracy returns the percentage of correct answers, 0 when no
// questions have been answered.
func (tk TopicKnowledge) Accuracy() float64 {
	if tk.TotalQuestions == 0 {
		return 0
	}
	return float64(tk.CorrectAnswers) / float64(tk.TotalQuestions) * 100
}

// HistoryRecord is an append-only fact about one answered question.
// The (UserID, QuestionText) pair is unique in the remote store; a
// repeat append for the same pair is silently ignored.
type HistoryRecord struct {
	UserID        string   `json:"userId"`
	Topic         string   `json:"topic"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// NormalizeTopic trims surrounding whitespace so that topic strings
// differing only by padding resolve to the same knowledge entry and
// history partition.
func NormalizeTopic(topic string) string {
	return strings.TrimSpace(topic)
}
