package kb

// QAPair is one frequent question/answer deduced from call recordings.
type QAPair struct {
	Question string
	Answer   string
}

// KnowledgeBase is the structured grounding source for a tenant.
type KnowledgeBase struct {
	BusinessName string
	Location     string
	Owner        string
	QAPairs      []QAPair
}

// TranscriptDoc is one raw transcript document used as fallback grounding.
type TranscriptDoc struct {
	Label        string
	Service      string
	Language     string
	Text         string // cleaned/translated, preferred
	OriginalText string
}

// Source is a tenant's grounding material. When KB is non-nil it is
// authoritative and the transcripts are ignored.
type Source struct {
	KB          *KnowledgeBase
	Transcripts []TranscriptDoc
}
