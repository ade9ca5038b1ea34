package agent

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vaanidesk/vaanidesk-be/internal/core/kb"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
)

// NoInformationContext is returned when a tenant has no grounding source at
// all. Absence of material is an answerable state, not an error.
const NoInformationContext = "No information available. Please upload recordings or documents to build the knowledge base."

// Agent is the per-tenant answering unit: the tenant's config, its grounding
// source, a lazily rendered context string, and an LLM client that memoizes
// its working model. Agents are built and cached by the Registry and live
// until an invalidation.
type Agent struct {
	Business *models.Business
	LLM      *llm.Client

	source *kb.Source

	mu       sync.Mutex
	context  string
	rendered bool
}

// RenderContext returns the grounding text for prompts, building it at most
// once per Agent lifetime. Reload-after-ingestion is handled by dropping the
// whole Agent via Registry.Invalidate, so the cache can never go stale.
func (a *Agent) RenderContext() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rendered {
		return a.context
	}

	a.context = renderSource(a.source)
	a.rendered = true
	return a.context
}

// PromptBusiness adapts the tenant config for prompt interpolation.
func (a *Agent) PromptBusiness() llm.BusinessPrompt {
	return llm.BusinessPrompt{
		AgentName:    a.Business.AgentName,
		BusinessName: a.Business.Name,
		OwnerName:    a.Business.OwnerName,
		OwnerPhone:   a.Business.OwnerPhone,
	}
}

// HasSource reports whether the agent has any grounding material.
func (a *Agent) HasSource() bool {
	return a.source != nil && (a.source.KB != nil || len(a.source.Transcripts) > 0)
}

// renderSource formats the grounding source as prompt text. A structured
// knowledge base always wins over raw transcripts.
func renderSource(source *kb.Source) string {
	if source == nil {
		return NoInformationContext
	}

	if source.KB != nil {
		knowledgeBase := source.KB
		var sb strings.Builder

		sb.WriteString("=== KNOWLEDGE BASE (Deduced from Call Recordings) ===\n")
		sb.WriteString(fmt.Sprintf("BUSINESS: %s\n", knowledgeBase.BusinessName))
		if knowledgeBase.Location != "" {
			sb.WriteString(fmt.Sprintf("LOCATION: %s\n", knowledgeBase.Location))
		}
		if knowledgeBase.Owner != "" {
			sb.WriteString(fmt.Sprintf("OWNER: %s\n", knowledgeBase.Owner))
		}

		sb.WriteString("\n=== FREQUENT QUESTIONS & ANSWERS ===\n")
		for _, pair := range knowledgeBase.QAPairs {
			sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", pair.Question, pair.Answer))
		}

		return strings.TrimRight(sb.String(), "\n")
	}

	if len(source.Transcripts) == 0 {
		return NoInformationContext
	}

	var sb strings.Builder
	sb.WriteString("=== TRANSCRIBED CALL RECORDINGS ===\n")
	sb.WriteString("The following are transcriptions of business call recordings.\n")
	sb.WriteString("Use this information to answer user queries.\n")

	for i, doc := range source.Transcripts {
		label := doc.Label
		if label == "" {
			label = fmt.Sprintf("transcript_%d", i+1)
		}

		sb.WriteString(fmt.Sprintf("\n--- Recording %d (%s) ---\n", i+1, label))
		sb.WriteString(fmt.Sprintf("Service: %s, Language: %s\n", doc.Service, doc.Language))

		text := doc.Text
		if text == "" {
			text = doc.OriginalText
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
