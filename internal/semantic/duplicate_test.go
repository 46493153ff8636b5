package semantic

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/promptdeck/internal/model"
)

func TestFindDuplicate_FailsOpenWhenUnavailable(t *testing.T) {
	stub := newStub()
	e := testEngine(stub, []string{"coding"})
	match, dup := e.FindDuplicate(context.Background(), "anything", []model.Prompt{{ID: "a", Text: "anything"}})
	require.False(t, dup)
	require.Nil(t, match)
}

func TestFindDuplicate_FailsOpenOnEmbedFailure(t *testing.T) {
	stub := newStub()
	e := readyEngine(t, stub, []string{"coding"})
	stub.failAll = true
	match, dup := e.FindDuplicate(context.Background(), "anything", []model.Prompt{{ID: "a", Text: "anything"}})
	require.False(t, dup)
	require.Nil(t, match)
}

func TestFindDuplicate_FlagsNearIdenticalText(t *testing.T) {
	stub := newStub()
	stub.set("summarize this article", 1, 0, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "far", Text: "x", Embedding: []float32{0, 1, 0}},
		{ID: "near", Text: "y", Embedding: []float32{1, 0, 0}},
	}
	match, dup := e.FindDuplicate(context.Background(), "summarize this article", prompts)
	require.True(t, dup)
	require.Equal(t, "near", match.ID)
}

func TestFindDuplicate_ThresholdIsStrict(t *testing.T) {
	stub := newStub()
	stub.set("candidate", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	// Unit vector whose cosine with the candidate lands exactly on the
	// threshold after float32 rounding.
	at := []float32{0.92, float32(math.Sqrt(1 - 0.92*0.92))}
	match, dup := e.FindDuplicate(context.Background(), "candidate", []model.Prompt{
		{ID: "at", Text: "x", Embedding: at},
	})
	require.False(t, dup)
	require.Nil(t, match)

	just := []float32{0.9201, float32(math.Sqrt(1 - 0.9201*0.9201))}
	match, dup = e.FindDuplicate(context.Background(), "candidate", []model.Prompt{
		{ID: "just", Text: "x", Embedding: just},
	})
	require.True(t, dup)
	require.Equal(t, "just", match.ID)
}

func TestFindDuplicate_ReturnsFirstMatchInOrder(t *testing.T) {
	stub := newStub()
	stub.set("candidate", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "miss", Text: "x", Embedding: []float32{0, 1}},
		{ID: "hit1", Text: "y", Embedding: []float32{1, 0}},
		{ID: "hit2", Text: "z", Embedding: []float32{1, 0}},
	}
	match, dup := e.FindDuplicate(context.Background(), "candidate", prompts)
	require.True(t, dup)
	require.Equal(t, "hit1", match.ID)
}

func TestFindDuplicate_ShortCircuitsAfterFirstHit(t *testing.T) {
	stub := newStub()
	stub.set("candidate", 1, 0)
	stub.set("exact copy", 1, 0)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "hit", Text: "exact copy"},
		{ID: "never", Text: "never embedded"},
	}
	before := stub.inferCount()
	_, dup := e.FindDuplicate(context.Background(), "candidate", prompts)
	require.True(t, dup)
	// Candidate + first prompt only; the scan stopped before the second.
	require.Equal(t, before+2, stub.inferCount())
}

func TestFindDuplicate_NoStaleVectorAfterDelete(t *testing.T) {
	stub := newStub()
	stub.set("the deleted text", 1, 0)
	stub.set("unrelated", 0, 1)
	e := readyEngine(t, stub, []string{"coding"})

	prompts := []model.Prompt{
		{ID: "a", Text: "the deleted text"},
		{ID: "b", Text: "unrelated"},
	}
	_, dup := e.FindDuplicate(context.Background(), "the deleted text", prompts)
	require.True(t, dup)

	// Prompt "a" is deleted and evicted; its old vector must not resurface.
	e.Forget("a")
	match, dup := e.FindDuplicate(context.Background(), "the deleted text", []model.Prompt{prompts[1]})
	require.False(t, dup)
	require.Nil(t, match)
}
