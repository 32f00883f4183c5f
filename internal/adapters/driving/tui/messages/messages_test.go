package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewSearch, "search"},
		{ViewAsk, "ask"},
		{ViewChunk, "chunk"},
		{ViewStats, "stats"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	seen := make(map[ViewType]bool)
	for _, v := range []ViewType{ViewMenu, ViewSearch, ViewAsk, ViewChunk, ViewStats, ViewSettings, ViewHelp} {
		assert.False(t, seen[v], v.String())
		seen[v] = true
	}
}

func TestSearchCompleted_CarriesResult(t *testing.T) {
	msg := SearchCompleted{
		Query:  "naltrexone",
		Result: domain.RetrievalResult{{Chunk: domain.Chunk{ID: "a"}, Score: 0.5}},
	}
	assert.Len(t, msg.Result, 1)
	assert.NoError(t, msg.Err)
}

func TestAnswerCompleted_CarriesError(t *testing.T) {
	msg := AnswerCompleted{Question: "q", Err: domain.ErrLLMUnavailable}
	assert.Nil(t, msg.Answer)
	assert.ErrorIs(t, msg.Err, domain.ErrLLMUnavailable)
}

func TestStatsLoaded(t *testing.T) {
	msg := StatsLoaded{Stats: &driving.CorpusStats{Chunks: 4, Indexed: 2}}
	assert.True(t, msg.Stats.IsStale())

	failed := StatsLoaded{Err: errors.New("boom")}
	assert.Nil(t, failed.Stats)
}
