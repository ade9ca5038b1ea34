package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaanidesk/vaanidesk-be/internal/core/kb"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
)

func TestRenderSourceKnowledgeBaseWins(t *testing.T) {
	source := &kb.Source{
		KB: &kb.KnowledgeBase{
			BusinessName: "Rainbow Driving School",
			Location:     "Jayanagar, Bengaluru",
			Owner:        "Ravi Kumar",
			QAPairs: []kb.QAPair{
				{Question: "What are the fees?", Answer: "5000 per month."},
			},
		},
		Transcripts: []kb.TranscriptDoc{
			{Label: "call_01.mp3", Text: "raw transcript text"},
		},
	}

	rendered := renderSource(source)
	assert.Contains(t, rendered, "=== KNOWLEDGE BASE")
	assert.Contains(t, rendered, "BUSINESS: Rainbow Driving School")
	assert.Contains(t, rendered, "Q: What are the fees?")
	assert.Contains(t, rendered, "A: 5000 per month.")
	// Transcripts never leak in when a structured KB exists.
	assert.NotContains(t, rendered, "raw transcript text")
}

func TestRenderSourceTranscriptsFallback(t *testing.T) {
	source := &kb.Source{
		Transcripts: []kb.TranscriptDoc{
			{Label: "call_01.mp3", Service: "whisper", Language: "hi", Text: "cleaned text", OriginalText: "original text"},
			{Service: "whisper", Language: "hi", OriginalText: "only original"},
		},
	}

	rendered := renderSource(source)
	assert.Contains(t, rendered, "=== TRANSCRIBED CALL RECORDINGS ===")
	assert.Contains(t, rendered, "--- Recording 1 (call_01.mp3) ---")
	// Cleaned text wins over the original when both exist.
	assert.Contains(t, rendered, "cleaned text")
	assert.NotContains(t, rendered, "original text\n")
	// Missing label gets a positional one; missing cleaned text falls back.
	assert.Contains(t, rendered, "--- Recording 2 (transcript_2) ---")
	assert.Contains(t, rendered, "only original")
}

func TestRenderSourceEmpty(t *testing.T) {
	assert.Equal(t, NoInformationContext, renderSource(nil))
	assert.Equal(t, NoInformationContext, renderSource(&kb.Source{}))
}

func TestRenderContextCached(t *testing.T) {
	ag := &Agent{
		Business: &models.Business{ID: "rainbow_driving", Name: "Rainbow Driving School"},
		source: &kb.Source{
			Transcripts: []kb.TranscriptDoc{{Text: "first render"}},
		},
	}

	first := ag.RenderContext()
	assert.Contains(t, first, "first render")

	// Mutating the source after the first render must not change the output;
	// the context is fixed for the agent's lifetime.
	ag.source.Transcripts[0].Text = "second render"
	assert.Equal(t, first, ag.RenderContext())
}

func TestHasSource(t *testing.T) {
	ag := &Agent{Business: &models.Business{ID: "x"}}
	assert.False(t, ag.HasSource())

	ag.source = &kb.Source{}
	assert.False(t, ag.HasSource())

	ag.source = &kb.Source{Transcripts: []kb.TranscriptDoc{{Text: "t"}}}
	assert.True(t, ag.HasSource())

	ag.source = &kb.Source{KB: &kb.KnowledgeBase{BusinessName: "x"}}
	assert.True(t, ag.HasSource())
}

func TestPromptBusiness(t *testing.T) {
	ag := &Agent{
		Business: &models.Business{
			ID:         "rainbow_driving",
			Name:       "Rainbow Driving School",
			OwnerName:  "Ravi Kumar",
			OwnerPhone: "9876543210",
			AgentName:  "Priya",
		},
	}

	bp := ag.PromptBusiness()
	assert.Equal(t, "Priya", bp.AgentName)
	assert.Equal(t, "Rainbow Driving School", bp.BusinessName)
	assert.Equal(t, "Ravi Kumar", bp.OwnerName)
	assert.Equal(t, "9876543210", bp.OwnerPhone)
}

func TestRenderSourceNoTrailingNewline(t *testing.T) {
	source := &kb.Source{
		KB: &kb.KnowledgeBase{
			BusinessName: "Rainbow Driving School",
			QAPairs:      []kb.QAPair{{Question: "q", Answer: "a"}},
		},
	}
	assert.False(t, strings.HasSuffix(renderSource(source), "\n"))
}
