package profile

import "testing"

func TestMergeAdds(t *testing.T) {
	tk, err := Merge(TopicKnowledge{}, 5, 3)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1}
	if tk != want {
		t.Errorf("merge = %+v, want %+v", tk, want)
	}
}

func TestMergeIsAdditiveAcrossCalls(t *testing.T) {
	// Two sequential completions sum counters and bump QuizzesTaken by
	// exactly 2, never overwrite.
	tests := []struct {
		a, b, c, d int
	}{
		{5, 3, 5, 4},
		{0, 0, 0, 0},
		{10, 10, 1, 0},
		{3, 1, 7, 7},
	}

	for _, tt := range tests {
		first, err := Merge(TopicKnowledge{}, tt.a, tt.b)
		if err != nil {
			t.Fatalf("first merge(%d, %d): %v", tt.a, tt.b, err)
		}
		second, err := Merge(first, tt.c, tt.d)
		if err != nil {
			t.Fatalf("second merge(%d, %d): %v", tt.c, tt.d, err)
		}
		want := TopicKnowledge{
			TotalQuestions: tt.a + tt.c,
			CorrectAnswers: tt.b + tt.d,
			QuizzesTaken:   2,
		}
		if second != want {
			t.Errorf("merge chain (%v) = %+v, want %+v", tt, second, want)
		}
	}
}

func TestMergeRejectsBadDeltas(t *testing.T) {
	tests := []struct {
		name      string
		questions int
		correct   int
	}{
		{"negative questions", -1, 0},
		{"negative correct", 3, -1},
		{"correct exceeds questions", 3, 4},
	}

	current := TopicKnowledge{TotalQuestions: 2, CorrectAnswers: 1, QuizzesTaken: 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(current, tt.questions, tt.correct)
			if err == nil {
				t.Fatal("expected error")
			}
			if got != current {
				t.Errorf("failed merge mutated result: %+v", got)
			}
		})
	}
}
