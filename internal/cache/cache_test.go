package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/topiq/internal/profile"
)

func newFileCache(t *testing.T) (*KVProfileCache, string) {
	t.Helper()
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	return NewProfileCache(kv), dir
}

func TestLoadEmpty(t *testing.T) {
	c, _ := newFileCache(t)

	p, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil profile from empty cache")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, _ := newFileCache(t)

	in := profile.New("u1", "alice")
	in.SetKnowledge("history", profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1})

	if err := c.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil {
		t.Fatal("expected profile after save")
	}
	if out.ID != "u1" || out.Username != "alice" {
		t.Errorf("identity = %s/%s, want u1/alice", out.ID, out.Username)
	}
	got := out.Knowledge("history")
	if got != (profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1}) {
		t.Errorf("knowledge = %+v", got)
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	c, _ := newFileCache(t)

	first := profile.New("u1", "alice")
	first.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 2, CorrectAnswers: 1, QuizzesTaken: 1})
	if err := c.Save(first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := profile.New("u2", "bob")
	if err := c.Save(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	out, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.ID != "u2" {
		t.Errorf("id = %s, want u2", out.ID)
	}
	if len(out.KnowledgeByTopic) != 0 {
		t.Errorf("expected prior knowledge gone, got %+v", out.KnowledgeByTopic)
	}
}

func TestCorruptSnapshotTreatedAsAbsent(t *testing.T) {
	c, dir := newFileCache(t)

	path := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	p, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Fatal("corrupt snapshot should load as absent")
	}
}

func TestClear(t *testing.T) {
	c, _ := newFileCache(t)

	if err := c.Save(profile.New("u1", "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	p, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil after clear")
	}

	// Clearing an already-empty cache is fine.
	if err := c.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := NewProfileCache(kv).Save(profile.New("u1", "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}

	kv2, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("reopen kv: %v", err)
	}
	p, err := NewProfileCache(kv2).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p == nil || p.ID != "u1" {
		t.Fatalf("expected persisted profile, got %+v", p)
	}
}
