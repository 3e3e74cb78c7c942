package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

func TestCombineByConfidence_HighestWins(t *testing.T) {
	members := []models.MemberResult{
		{Provider: "a", Content: "first", Confidence: 0.6},
		{Provider: "b", Content: "second", Confidence: 0.9},
		{Provider: "c", Content: "third", Confidence: 0.7},
	}

	merged, err := combineResults(models.TaskChat, members)
	require.NoError(t, err)
	assert.Equal(t, "second", merged.content)
	assert.Equal(t, 0.9, merged.confidence)
}

func TestCombineByConfidence_TieKeepsEarlierMember(t *testing.T) {
	members := []models.MemberResult{
		{Content: "first", Confidence: 0.9},
		{Content: "second", Confidence: 0.9},
	}

	merged, err := combineResults(models.TaskCompletion, members)
	require.NoError(t, err)
	assert.Equal(t, "first", merged.content)
}

func TestCombineByConfidence_MissingConfidenceDefaults(t *testing.T) {
	members := []models.MemberResult{
		{Content: "unreported"},
		{Content: "modest", Confidence: 0.75},
	}

	merged, err := combineResults(models.TaskCreative, members)
	require.NoError(t, err)
	assert.Equal(t, "unreported", merged.content, "defaulted 0.8 should beat 0.75")
	assert.Equal(t, defaultConfidence, merged.confidence)
}

func TestCombineEmbeddings_ElementWiseMean(t *testing.T) {
	members := []models.MemberResult{
		{Embedding: []float64{1, 0}},
		{Embedding: []float64{0, 1}},
	}

	merged, err := combineResults(models.TaskEmbedding, members)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, merged.embedding)
	assert.Empty(t, merged.content)
}

func TestCombineEmbeddings_DimensionMismatchFails(t *testing.T) {
	members := []models.MemberResult{
		{Embedding: []float64{1, 0, 0}},
		{Embedding: []float64{0, 1}},
	}

	_, err := combineResults(models.TaskEmbedding, members)

	var ce *models.CombineError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, models.TaskEmbedding, ce.Task)
	assert.Contains(t, ce.Message, "dimensions differ")
}

func TestCombineAnalysis_ConcatenatesWithMinConfidence(t *testing.T) {
	members := []models.MemberResult{
		{Content: "finding one", Confidence: 0.9},
		{Content: "finding two", Confidence: 0.6},
	}

	merged, err := combineResults(models.TaskAnalysis, members)
	require.NoError(t, err)
	assert.Equal(t, "finding one"+analysisDelimiter+"finding two", merged.content)
	assert.Equal(t, 0.6, merged.confidence)
}

func TestCombineResults_NoMembers(t *testing.T) {
	_, err := combineResults(models.TaskChat, nil)

	var ce *models.CombineError
	assert.ErrorAs(t, err, &ce)
}
