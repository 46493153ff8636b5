package semantic

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/promptdeck/internal/model"
)

func TestSearch_EmptyQueryReturnsInputUnchanged(t *testing.T) {
	stub := newStub()
	e := readyEngine(t, stub, []string{"coding"})
	prompts := []model.Prompt{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}
	matches := e.Search(context.Background(), "  ", prompts)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].Prompt.ID)
	require.Equal(t, "b", matches[1].Prompt.ID)
	require.Equal(t, float32(0), matches[0].Score)
}

func TestSearch_RanksByMeaning(t *testing.T) {
	stub := newStub()
	stub.set("fix a segmentation fault", 1, 0, 0, 0)
	stub.set("debug a null pointer crash", 0.9, 0.1, 0, 0)
	stub.set("write a poem about the sea", 0, 0, 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "a", Text: "debug a null pointer crash"},
		{ID: "b", Text: "write a poem about the sea"},
	}
	matches := e.Search(context.Background(), "fix a segmentation fault", prompts)
	require.Len(t, matches, 1)
	require.Equal(t, "a", matches[0].Prompt.ID)
	require.Greater(t, matches[0].Score, float32(0.25))
}

func TestSearch_KeywordFallbackWhenUnavailable(t *testing.T) {
	stub := newStub()
	e := testEngine(stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "a", Text: "debug a null pointer crash"},
		{ID: "b", Text: "write a poem about the sea"},
	}
	// No substring match anywhere: empty result, not an error.
	matches := e.Search(context.Background(), "fix a segmentation fault", prompts)
	require.Empty(t, matches)

	matches = e.Search(context.Background(), "POEM", prompts)
	require.Len(t, matches, 1)
	require.Equal(t, "b", matches[0].Prompt.ID)
}

func TestSearch_KeywordFallbackMatchesTags(t *testing.T) {
	stub := newStub()
	e := testEngine(stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "a", Title: "refactor helper", Text: "clean this up", Tags: []string{"coding", "golang"}},
		{ID: "b", Text: "travel plans"},
	}
	matches := e.Search(context.Background(), "golang", prompts)
	require.Len(t, matches, 1)
	require.Equal(t, "a", matches[0].Prompt.ID)
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	e := readyEngine(t, stub, []string{"coding"})

	at := make([]float32, 16)
	at[0] = 1 // cosine with the normalized query is exactly 0.25
	above := make([]float32, 16)
	above[0], above[1] = 1, 1

	prompts := []model.Prompt{
		{ID: "at", Text: "x", Embedding: at},
		{ID: "above", Text: "y", Embedding: above},
	}
	matches := e.Search(context.Background(), "query", prompts)
	require.Len(t, matches, 1)
	require.Equal(t, "above", matches[0].Prompt.ID)
}

func TestSearch_CapsCandidatePool(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := make([]model.Prompt, 0, 250)
	for i := 0; i < 250; i++ {
		prompts = append(prompts, model.Prompt{
			ID:        fmt.Sprintf("p%03d", i),
			Text:      "anything",
			Embedding: []float32{1, 0},
		})
	}
	before := stub.inferCount()
	matches := e.Search(context.Background(), "query", prompts)
	require.Len(t, matches, 200)
	for _, m := range matches {
		require.Less(t, m.Prompt.ID, "p200")
	}
	// Only the query itself needed inference; capped tail was never touched.
	require.Equal(t, before+1, stub.inferCount())
}

func TestSearch_StableOrderForEqualScores(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	shared := []float32{1, 0}
	prompts := []model.Prompt{
		{ID: "first", Text: "x", Embedding: shared},
		{ID: "second", Text: "y", Embedding: shared},
		{ID: "third", Text: "z", Embedding: shared},
	}
	matches := e.Search(context.Background(), "query", prompts)
	require.Len(t, matches, 3)
	require.Equal(t, "first", matches[0].Prompt.ID)
	require.Equal(t, "second", matches[1].Prompt.ID)
	require.Equal(t, "third", matches[2].Prompt.ID)
}

func TestSearch_FailedCandidateEmbedsAreExcluded(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 0)
	stub.set("good", 1, 0)
	stub.vectors["bad"] = flat() // empty result -> embed failure
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "bad", Text: "bad"},
		{ID: "good", Text: "good"},
	}
	matches := e.Search(context.Background(), "query", prompts)
	require.Len(t, matches, 1)
	require.Equal(t, "good", matches[0].Prompt.ID)
}

func TestSearch_PerCallCacheReusesComputedVectors(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 0)
	stub.set("same text", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	// Two prompts with no id share the composite key, so one inference serves both.
	prompts := []model.Prompt{
		{Text: "same text"},
		{Text: "same text"},
	}
	before := stub.inferCount()
	matches := e.Search(context.Background(), "query", prompts)
	require.Len(t, matches, 2)
	require.Equal(t, before+2, stub.inferCount()) // query + one candidate
}

func TestSearch_UsesPerIDCacheAcrossCalls(t *testing.T) {
	stub := newStub()
	stub.set("query", 1, 0)
	stub.set("hello there", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{{ID: "a", Text: "hello there"}}
	e.Search(context.Background(), "query", prompts)
	before := stub.inferCount()
	e.Search(context.Background(), "query", prompts)
	// Second call resolves the candidate from the per-id cache.
	require.Equal(t, before+1, stub.inferCount())
}
