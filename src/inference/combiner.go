package inference

import (
	"fmt"
	"strings"

	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

const (
	// defaultConfidence stands in for members that don't self-report one.
	defaultConfidence = 0.8

	analysisDelimiter = "\n\n---\n\n"
)

// combined is the merged payload the orchestrator turns into a response.
type combined struct {
	content    string
	embedding  []float64
	confidence float64
}

// combineResults merges successful ensemble member results per capability:
// text tasks keep the most confident member, embeddings are averaged
// element-wise, analyses are concatenated.
func combineResults(task models.TaskType, members []models.MemberResult) (*combined, error) {
	if len(members) == 0 {
		return nil, &models.CombineError{Task: task, Message: "no successful results to combine"}
	}

	switch task {
	case models.TaskEmbedding:
		return combineEmbeddings(task, members)
	case models.TaskAnalysis:
		return combineAnalysis(members), nil
	default: // completion, chat, creative
		return combineByConfidence(members), nil
	}
}

// combineByConfidence picks the member with the highest self-reported
// confidence; ties keep the earlier member.
func combineByConfidence(members []models.MemberResult) *combined {
	best := 0
	bestConf := memberConfidence(members[0])
	for i := 1; i < len(members); i++ {
		if c := memberConfidence(members[i]); c > bestConf {
			best, bestConf = i, c
		}
	}
	return &combined{
		content:    members[best].Content,
		confidence: bestConf,
	}
}

// combineEmbeddings averages member vectors element-wise. Mismatched
// dimensionality is fatal.
func combineEmbeddings(task models.TaskType, members []models.MemberResult) (*combined, error) {
	dims := len(members[0].Embedding)
	if dims == 0 {
		return nil, &models.CombineError{Task: task, Message: "member returned an empty vector"}
	}

	mean := make([]float64, dims)
	for _, m := range members {
		if len(m.Embedding) != dims {
			return nil, &models.CombineError{
				Task:    task,
				Message: fmt.Sprintf("embedding dimensions differ: %d vs %d", dims, len(m.Embedding)),
			}
		}
		for i, v := range m.Embedding {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(members))
	}

	confidence := 0.0
	for _, m := range members {
		confidence += memberConfidence(m)
	}
	confidence /= float64(len(members))

	return &combined{embedding: mean, confidence: confidence}, nil
}

// combineAnalysis concatenates member outputs; combined confidence is the
// minimum across members.
func combineAnalysis(members []models.MemberResult) *combined {
	parts := make([]string, len(members))
	minConf := memberConfidence(members[0])
	for i, m := range members {
		parts[i] = m.Content
		if c := memberConfidence(m); c < minConf {
			minConf = c
		}
	}
	return &combined{
		content:    strings.Join(parts, analysisDelimiter),
		confidence: minConf,
	}
}

func memberConfidence(m models.MemberResult) float64 {
	if m.Confidence == 0 {
		return defaultConfidence
	}
	return m.Confidence
}
