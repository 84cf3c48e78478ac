package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/topiq/internal/profile"
	"github.com/abhisek/topiq/internal/remote"
)

// fakeCache is an in-memory ProfileCache with injectable failures.
// Goroutine-safe because the background refresh writes concurrently.
type fakeCache struct {
	mu      sync.Mutex
	profile *profile.Profile
	loadErr error
	saveErr error
}

func (f *fakeCache) Load() (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return clone(f.profile), nil
}

func (f *fakeCache) Save(p *profile.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.profile = clone(p)
	return nil
}

func (f *fakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = nil
	return nil
}

func (f *fakeCache) stored() *profile.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.profile)
}

// fakeRemote is an in-memory ProfileRemote with injectable failures.
type fakeRemote struct {
	mu        sync.Mutex
	profiles  map[string]*profile.Profile
	history   []profile.HistoryRecord
	fetchErr  error
	updateErr error
	appendErr error
	historyEr error
	fetches   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{profiles: make(map[string]*profile.Profile)}
}

func (f *fakeRemote) FetchProfile(_ context.Context, userID string) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, remote.ErrProfileNotFound
	}
	return clone(p), nil
}

func (f *fakeRemote) InsertProfile(_ context.Context, p *profile.Profile, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = clone(p)
	return nil
}

func (f *fakeRemote) UpdateKnowledge(_ context.Context, userID string, knowledge map[string]profile.TopicKnowledge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return remote.ErrProfileNotFound
	}
	p.KnowledgeByTopic = make(map[string]profile.TopicKnowledge, len(knowledge))
	for k, v := range knowledge {
		p.KnowledgeByTopic[k] = v
	}
	return nil
}

func (f *fakeRemote) AppendHistory(_ context.Context, records []profile.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, rec := range records {
		if f.hasLocked(rec.UserID, rec.QuestionText) {
			continue
		}
		rec.Topic = profile.NormalizeTopic(rec.Topic)
		f.history = append(f.history, rec)
	}
	return nil
}

func (f *fakeRemote) FetchHistory(_ context.Context, userID, topic string) ([]profile.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyEr != nil {
		return nil, f.historyEr
	}
	topic = profile.NormalizeTopic(topic)
	var out []profile.HistoryRecord
	for _, rec := range f.history {
		if rec.UserID == userID && rec.Topic == topic {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRemote) hasLocked(userID, question string) bool {
	for _, rec := range f.history {
		if rec.UserID == userID && rec.QuestionText == question {
			return true
		}
	}
	return false
}

func (f *fakeRemote) knowledge(userID, topic string) profile.TopicKnowledge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[userID].Knowledge(topic)
}

func clone(p *profile.Profile) *profile.Profile {
	if p == nil {
		return nil
	}
	out := profile.New(p.ID, p.Username)
	for k, v := range p.KnowledgeByTopic {
		out.KnowledgeByTopic[k] = v
	}
	return out
}

func waitRefresh(t *testing.T, ch <-chan RefreshResult) RefreshResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("background refresh never completed")
		return RefreshResult{}
	}
}

func TestGetProfileCacheFirst(t *testing.T) {
	local := profile.New("u1", "alice")
	local.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1})

	remoteCopy := profile.New("u1", "alice")
	remoteCopy.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 10, CorrectAnswers: 7, QuizzesTaken: 2})

	c := &fakeCache{profile: local}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), remoteCopy, ""))

	refreshed := make(chan RefreshResult, 1)
	e := New(c, r, WithRefreshHook(func(res RefreshResult) { refreshed <- res }))

	got := e.GetProfile(context.Background(), "u1")
	require.NotNil(t, got)
	// The immediate result is the local snapshot, not the remote one.
	assert.Equal(t, 5, got.Knowledge("math").TotalQuestions)

	res := waitRefresh(t, refreshed)
	require.NoError(t, res.Err)

	// The background refresh overwrote the cache with remote truth.
	assert.Equal(t, 10, c.stored().Knowledge("math").TotalQuestions)
}

func TestGetProfileCacheMissFallsBackToRemote(t *testing.T) {
	remoteCopy := profile.New("u1", "alice")
	remoteCopy.SetKnowledge("history", profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1})

	c := &fakeCache{}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), remoteCopy, ""))

	e := New(c, r)

	got := e.GetProfile(context.Background(), "u1")
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	// The fetched profile was cached for next time.
	cached := c.stored()
	require.NotNil(t, cached)
	assert.Equal(t, "u1", cached.ID)
}

func TestGetProfileAbsentOnDoubleFailure(t *testing.T) {
	c := &fakeCache{}
	r := newFakeRemote()
	r.fetchErr = errors.New("dial tcp: connection refused")

	e := New(c, r)

	assert.Nil(t, e.GetProfile(context.Background(), "u1"))
}

func TestGetProfileMismatchedCacheTreatedAsMiss(t *testing.T) {
	c := &fakeCache{profile: profile.New("someone-else", "bob")}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), profile.New("u1", "alice"), ""))

	e := New(c, r)

	got := e.GetProfile(context.Background(), "u1")
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestRecordQuizCompletionEndToEnd(t *testing.T) {
	p := profile.New("u1", "alice")
	c := &fakeCache{profile: clone(p)}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), p, ""))

	e := New(c, r)
	ctx := context.Background()

	outcome, err := e.RecordQuizCompletion(ctx, "u1", "History", 5, 3, []profile.HistoryRecord{
		{UserID: "u1", Topic: "History", QuestionText: "Q1", Options: []string{"a", "b"}, CorrectOption: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileSynced, outcome)

	want := profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1}
	assert.Equal(t, want, c.stored().Knowledge("History"))
	assert.Equal(t, want, r.knowledge("u1", "History"))

	// Second completion on the same topic accumulates.
	outcome, err = e.RecordQuizCompletion(ctx, "u1", "History", 5, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSynced, outcome)

	want = profile.TopicKnowledge{TotalQuestions: 10, CorrectAnswers: 7, QuizzesTaken: 2}
	assert.Equal(t, want, c.stored().Knowledge("History"))
	assert.Equal(t, want, r.knowledge("u1", "History"))
}

func TestRecordQuizCompletionTopicNormalization(t *testing.T) {
	p := profile.New("u1", "alice")
	c := &fakeCache{profile: clone(p)}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), p, ""))

	e := New(c, r)
	ctx := context.Background()

	_, err := e.RecordQuizCompletion(ctx, "u1", "  Math ", 2, 2, []profile.HistoryRecord{
		{UserID: "u1", Topic: "  Math ", QuestionText: "Q1", Options: []string{"a", "b"}, CorrectOption: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, c.stored().Knowledge("Math").TotalQuestions)
	assert.Equal(t, 2, r.knowledge("u1", "Math").TotalQuestions)
	assert.Len(t, e.HistoryForTopic(ctx, "u1", "Math"), 1)
}

func TestRecordQuizCompletionMergesAgainstRemoteState(t *testing.T) {
	// Local and remote diverged: the remote already holds progress the
	// cache never saw. The remote merge must use the remote's own count.
	local := profile.New("u1", "alice")
	local.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 5, CorrectAnswers: 3, QuizzesTaken: 1})

	remoteCopy := profile.New("u1", "alice")
	remoteCopy.SetKnowledge("math", profile.TopicKnowledge{TotalQuestions: 10, CorrectAnswers: 7, QuizzesTaken: 2})

	c := &fakeCache{profile: local}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), remoteCopy, ""))

	e := New(c, r)

	outcome, err := e.RecordQuizCompletion(context.Background(), "u1", "math", 5, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSynced, outcome)

	assert.Equal(t, profile.TopicKnowledge{TotalQuestions: 10, CorrectAnswers: 8, QuizzesTaken: 2},
		c.stored().Knowledge("math"))
	assert.Equal(t, profile.TopicKnowledge{TotalQuestions: 15, CorrectAnswers: 12, QuizzesTaken: 3},
		r.knowledge("u1", "math"))
}

func TestRecordQuizCompletionRemoteFailureSwallowed(t *testing.T) {
	p := profile.New("u1", "alice")
	c := &fakeCache{profile: clone(p)}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), p, ""))
	r.updateErr = errors.New("dial tcp: connection refused")

	e := New(c, r)

	outcome, err := e.RecordQuizCompletion(context.Background(), "u1", "math", 3, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, ReconcileFailed, outcome)

	// The local write still happened.
	assert.Equal(t, profile.TopicKnowledge{TotalQuestions: 3, CorrectAnswers: 2, QuizzesTaken: 1},
		c.stored().Knowledge("math"))
}

func TestRecordQuizCompletionLocalNoOpOnMismatch(t *testing.T) {
	c := &fakeCache{profile: profile.New("someone-else", "bob")}
	r := newFakeRemote()
	require.NoError(t, r.InsertProfile(context.Background(), profile.New("u1", "alice"), ""))

	e := New(c, r)

	outcome, err := e.RecordQuizCompletion(context.Background(), "u1", "math", 4, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSynced, outcome)

	// The mismatched cache was left untouched, the remote still updated.
	assert.Empty(t, c.stored().KnowledgeByTopic)
	assert.Equal(t, 4, r.knowledge("u1", "math").TotalQuestions)
}

func TestRecordQuizCompletionRejectsBadDeltas(t *testing.T) {
	c := &fakeCache{profile: profile.New("u1", "alice")}
	r := newFakeRemote()

	e := New(c, r)

	_, err := e.RecordQuizCompletion(context.Background(), "u1", "math", 3, 5, nil)
	require.Error(t, err)
	// Neither store was touched.
	assert.Empty(t, c.stored().KnowledgeByTopic)
	assert.Zero(t, r.fetches)
}

func TestListTopics(t *testing.T) {
	p := profile.New("u1", "alice")
	p.SetKnowledge("science", profile.TopicKnowledge{TotalQuestions: 1, QuizzesTaken: 1})
	p.SetKnowledge("art", profile.TopicKnowledge{TotalQuestions: 1, QuizzesTaken: 1})

	c := &fakeCache{profile: p}
	e := New(c, newFakeRemote())

	assert.Equal(t, []string{"art", "science"}, e.ListTopics(context.Background(), "u1"))
	e.Wait()
}

func TestListTopicsAbsentProfile(t *testing.T) {
	r := newFakeRemote()
	r.fetchErr = errors.New("no such host")
	e := New(&fakeCache{}, r)

	assert.Empty(t, e.ListTopics(context.Background(), "u1"))
}

func TestHistoryForTopicFailureReturnsEmpty(t *testing.T) {
	r := newFakeRemote()
	r.historyEr = errors.New("network is unreachable")
	e := New(&fakeCache{}, r)

	got := e.HistoryForTopic(context.Background(), "u1", "math")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
