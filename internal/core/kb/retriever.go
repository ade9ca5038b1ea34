package kb

import (
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
	"gorm.io/gorm"
)

type Retriever struct {
	db *gorm.DB
}

func NewRetriever(db *gorm.DB) *Retriever {
	return &Retriever{db: db}
}

// GetSource loads the grounding material for one business. A structured
// knowledge base (any active entries) takes priority; transcripts are loaded
// regardless so callers can fall back to them.
func (r *Retriever) GetSource(businessID string) (*Source, error) {
	var business models.Business
	if err := r.db.First(&business, "id = ?", businessID).Error; err != nil {
		return nil, err
	}

	source := &Source{}

	var entries []models.KnowledgeEntry
	if err := r.db.Where("business_id = ? AND is_active = ?", businessID, true).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		knowledgeBase := &KnowledgeBase{
			BusinessName: business.Name,
			Location:     business.Location,
			Owner:        business.OwnerName,
		}
		for _, entry := range entries {
			knowledgeBase.QAPairs = append(knowledgeBase.QAPairs, QAPair{
				Question: entry.Question,
				Answer:   entry.Answer,
			})
		}
		source.KB = knowledgeBase
	}

	var transcripts []models.Transcript
	if err := r.db.Where("business_id = ?", businessID).
		Order("created_at ASC").
		Find(&transcripts).Error; err != nil {
		return nil, err
	}

	for _, t := range transcripts {
		source.Transcripts = append(source.Transcripts, TranscriptDoc{
			Label:        t.Filename,
			Service:      t.Service,
			Language:     t.Language,
			Text:         t.Text,
			OriginalText: t.OriginalText,
		})
	}

	return source, nil
}
