package server

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

func ids(docs []document.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestWithoutDocuments(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.GetDocumentCount())

	_, err := s.GetDocumentID(0)
	assert.True(t, errors.Is(err, apperrors.ErrOutOfRange))

	docs, err := s.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestConstructors(t *testing.T) {
	s, err := NewFromText("  and in at ")
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "at", "in"}, s.StopWords().Words())

	s, err = NewWithStopWords([]string{"and", "", "in", "and"})
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "in"}, s.StopWords().Words())

	_, err = NewFromText("and i\x02n")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	_, err = NewWithStopWords([]string{"\x1f"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	s, err = NewFromConfig(config.EngineConfig{StopWords: "in", MaxResults: 2})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.AddDocument(i, "cat in hat", document.Actual, nil))
	}
	docs, err := s.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestAddDocumentRejectsInvalidIDs(t *testing.T) {
	s := New()
	err := s.AddDocument(-1, "curly cat curly tail", document.Actual, []int{7, 2, 7})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDocumentID))
	assert.Equal(t, 0, s.GetDocumentCount())

	require.NoError(t, s.AddDocument(11, "cat", document.Actual, nil))
	err = s.AddDocument(11, "dog", document.Actual, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDocumentID))
	assert.Equal(t, 1, s.GetDocumentCount())

	docs, err := s.FindTopDocuments("dog")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAddDocumentIsAtomic(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(1, "cat dog", document.Actual, nil))

	err := s.AddDocument(2, "curly cat big\x12dog tail", document.Actual, []int{1})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidWord))
	assert.Equal(t, 1, s.GetDocumentCount())
	assert.Empty(t, s.GetWordFrequencies(2))

	for _, q := range []string{"curly", "cat", "tail"} {
		docs, err := s.FindTopDocuments(q)
		require.NoError(t, err)
		assert.NotContains(t, ids(docs), 2, "query %q", q)
	}
	_, _, err = s.MatchDocument("cat", 2)
	assert.True(t, errors.Is(err, apperrors.ErrDocumentNotFound))

	// the id is still free
	require.NoError(t, s.AddDocument(2, "curly cat", document.Actual, nil))
}

func TestAddTwoDocuments(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(11, "curly cat curly tail", document.Actual, []int{7, 2, 7}))
	assert.Equal(t, 1, s.GetDocumentCount())
	id, err := s.GetDocumentID(0)
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	require.NoError(t, s.AddDocument(12, "curly dog and fancy collar", document.Banned, []int{1, 2, 3}))
	assert.Equal(t, 2, s.GetDocumentCount())
	id, err = s.GetDocumentID(1)
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = s.GetDocumentID(2)
	assert.True(t, errors.Is(err, apperrors.ErrOutOfRange))
	_, err = s.GetDocumentID(-1)
	assert.True(t, errors.Is(err, apperrors.ErrOutOfRange))
}

func TestCurlyExample(t *testing.T) {
	s, err := NewWithStopWords([]string{"and", "in", "at"})
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(1, "curly cat curly tail", document.Actual, []int{7, 2, 7}))
	require.NoError(t, s.AddDocument(2, "curly dog and fancy collar", document.Actual, []int{1, 2, 3}))
	require.NoError(t, s.AddDocument(3, "big cat fancy collar", document.Actual, []int{1, 2, 8}))

	docs, err := s.FindTopDocuments("curly")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[0].Equal(document.Document{ID: 1, Relevance: 0.5 * math.Log(1.5), Rating: 5}), "got %v", docs[0])
	assert.True(t, docs[1].Equal(document.Document{ID: 2, Relevance: 0.25 * math.Log(1.5), Rating: 2}), "got %v", docs[1])
	assert.InDelta(t, 0.2027, docs[0].Relevance, 1e-4)
	assert.InDelta(t, 0.1014, docs[1].Relevance, 1e-4)
}

func TestCalculateRelevance(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(1, "curly cat curly tail", document.Actual, []int{7, 2, 7}))
	require.NoError(t, s.AddDocument(2, "curly dog and fancy collar", document.Actual, []int{1, 2, 3}))
	require.NoError(t, s.AddDocument(3, "big cat fancy collar", document.Actual, []int{1, 2, 8}))
	require.NoError(t, s.AddDocument(4, "big dog sparrow Eugene", document.Actual, []int{1, 3, 2}))
	require.NoError(t, s.AddDocument(5, "big dog sparrow Vasiliy", document.Actual, []int{1, 1, 1}))

	docs, err := s.FindTopDocuments("curly big cat")
	require.NoError(t, err)

	idfCurly := math.Log(5.0 / 2.0)
	idfBig := math.Log(5.0 / 3.0)
	idfCat := math.Log(5.0 / 2.0)
	want := []document.Document{
		{ID: 1, Relevance: idfCurly*0.5 + idfCat*0.25, Rating: 5},
		{ID: 3, Relevance: idfBig*0.25 + idfCat*0.25, Rating: 3},
		{ID: 2, Relevance: idfCurly * 0.2, Rating: 2},
		{ID: 4, Relevance: idfBig * 0.25, Rating: 2},
		{ID: 5, Relevance: idfBig * 0.25, Rating: 1},
	}
	require.Len(t, docs, len(want))
	for i := range want {
		assert.True(t, docs[i].Equal(want[i]), "position %d: got %v want %v", i, docs[i], want[i])
	}
}

func TestTopDocumentsLimitAndOrder(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		text := "cat"
		for j := 0; j < i; j++ {
			text += fmt.Sprintf(" filler%d", j)
		}
		require.NoError(t, s.AddDocument(i, text, document.Actual, []int{i}))
	}
	require.NoError(t, s.AddDocument(100, "dog", document.Actual, nil))

	docs, err := s.FindTopDocuments("cat")
	require.NoError(t, err)
	require.Len(t, docs, 5)
	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1], docs[i]
		if math.Abs(prev.Relevance-cur.Relevance) < document.Epsilon {
			assert.GreaterOrEqual(t, prev.Rating, cur.Rating)
		} else {
			assert.Greater(t, prev.Relevance, cur.Relevance)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids(docs))
}

func TestTiesBrokenByRating(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(1, "cat dog", document.Actual, []int{1}))
	require.NoError(t, s.AddDocument(2, "cat bird", document.Actual, []int{9}))
	require.NoError(t, s.AddDocument(3, "cat fish", document.Actual, []int{5}))
	require.NoError(t, s.AddDocument(4, "parrot", document.Actual, nil))

	docs, err := s.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, ids(docs))
}

func TestStopWordsExcluded(t *testing.T) {
	s, err := NewFromText("in the")
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(42, "cat in the city", document.Actual, nil))
	require.NoError(t, s.AddDocument(43, "dog", document.Actual, nil))

	docs, err := s.FindTopDocuments("in")
	require.NoError(t, err)
	assert.Empty(t, docs)

	freqs := s.GetWordFrequencies(42)
	assert.Len(t, freqs, 2)
	assert.InDelta(t, 0.5, freqs["cat"], 1e-12)

	docs, err = s.FindTopDocuments("cat -in")
	require.NoError(t, err)
	assert.Equal(t, []int{42}, ids(docs))
}

func TestMinusWordsExclude(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(1, "curly cat curly tail", document.Actual, nil))
	require.NoError(t, s.AddDocument(2, "curly dog fancy collar", document.Actual, nil))
	require.NoError(t, s.AddDocument(3, "big bird", document.Actual, nil))

	docs, err := s.FindTopDocuments("curly -tail")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(docs))

	docs, err = s.FindTopDocuments("curly -cat -dog")
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = s.FindTopDocuments("-curly")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFindByStatusAndPredicate(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(0, "white cat fancy collar", document.Actual, []int{8, -3}))
	require.NoError(t, s.AddDocument(1, "fluffy cat fluffy tail", document.Actual, []int{7, 2, 7}))
	require.NoError(t, s.AddDocument(2, "groomed dog expressive eyes", document.Actual, []int{5, -12, 2, 1}))
	require.NoError(t, s.AddDocument(3, "groomed starling eugene", document.Banned, []int{9}))

	docs, err := s.FindTopDocumentsByStatus("fluffy groomed cat", document.Banned)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ids(docs))
	assert.Equal(t, 9, docs[0].Rating)

	docs, err = s.FindTopDocumentsWithPredicate("fluffy groomed cat", func(id int, _ document.Status, _ int) bool {
		return id%2 == 0
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 2}, ids(docs))

	docs, err = s.FindTopDocumentsWithPredicate("cat", func(_ int, _ document.Status, rating int) bool {
		return rating > 2
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(docs))

	docs, err = s.FindTopDocumentsByStatus("cat", document.Removed)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInvalidQueries(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDocument(1, "cat", document.Actual, nil))

	for _, q := range []string{"cat -", "cat --dog", "--", "c\x01at", "-"} {
		docs, err := s.FindTopDocuments(q)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidQuery), "query %q", q)
		assert.Nil(t, docs)

		_, _, err = s.MatchDocument(q, 1)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidQuery), "query %q", q)
	}
}

func TestMatchDocument(t *testing.T) {
	s, err := NewFromText("and")
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(1, "curly cat curly tail", document.Actual, nil))
	require.NoError(t, s.AddDocument(2, "curly dog and fancy collar", document.Irrelevant, nil))

	words, status, err := s.MatchDocument("curly tail collar and", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"curly", "tail"}, words)
	assert.Equal(t, document.Actual, status)

	words, status, err = s.MatchDocument("curly fancy dog -collar", 2)
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.Equal(t, document.Irrelevant, status)

	words, _, err = s.MatchDocument("parrot -hamster", 2)
	require.NoError(t, err)
	assert.Empty(t, words)

	_, _, err = s.MatchDocument("cat", 3)
	assert.True(t, errors.Is(err, apperrors.ErrDocumentNotFound))
}

func TestTermFrequencySumsToOne(t *testing.T) {
	s, err := NewFromText("a the")
	require.NoError(t, err)
	texts := []string{
		"the quick brown fox jumps over the lazy dog",
		"a a a b",
		"one two three four five six seven eight nine ten eleven twelve thirteen",
	}
	for i, text := range texts {
		require.NoError(t, s.AddDocument(i, text, document.Actual, nil))
		sum := 0.0
		for _, tf := range s.GetWordFrequencies(i) {
			sum += tf
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "document %d", i)
	}
}

func TestDocumentOfOnlyStopWords(t *testing.T) {
	s, err := NewFromText("in at")
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(5, "in at in", document.Actual, []int{3}))
	assert.Equal(t, 1, s.GetDocumentCount())
	assert.Empty(t, s.GetWordFrequencies(5))

	words, status, err := s.MatchDocument("in cat", 5)
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.Equal(t, document.Actual, status)
}

func TestPostingsAndIndexSnapshot(t *testing.T) {
	s, err := NewFromText("and")
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(7, "dog and cat", document.Actual, nil))
	require.NoError(t, s.AddDocument(2, "cat cat", document.Banned, nil))

	cat := s.Postings("cat")
	require.Len(t, cat, 2)
	assert.Equal(t, 2, cat[0].DocID)
	assert.InDelta(t, 1.0, cat[0].Frequency, 1e-12)
	assert.Equal(t, 7, cat[1].DocID)
	assert.InDelta(t, 0.5, cat[1].Frequency, 1e-12)
	assert.Empty(t, s.Postings("and"))

	snap := s.IndexSnapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "cat", snap[0].Term)
	assert.Equal(t, "dog", snap[1].Term)
	assert.Equal(t, 7, snap[1].Postings[0].DocID)
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(WithMetrics(m))

	require.NoError(t, s.AddDocument(1, "cat", document.Actual, nil))
	require.NoError(t, s.AddDocument(2, "dog", document.Actual, nil))
	require.Error(t, s.AddDocument(1, "cat", document.Actual, nil))
	require.Error(t, s.AddDocument(3, "c\x01t", document.Actual, nil))

	_, _ = s.FindTopDocuments("cat")
	_, _ = s.FindTopDocuments("parrot")
	_, _ = s.FindTopDocuments("--x")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsRejectedTotal.WithLabelValues("invalid_document_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsRejectedTotal.WithLabelValues("invalid_word")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("error")))
	assert.Greater(t, testutil.ToFloat64(m.IndexSizeBytes), 0.0)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.AddDocument(w*1000+i, fmt.Sprintf("cat word%d", i), document.Actual, []int{i})
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				docs, err := s.FindTopDocuments("cat -word3")
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(docs), 5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, s.GetDocumentCount())
}
