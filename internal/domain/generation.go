package domain

import "time"

// Generation is an accepted result: the rendered artifact plus what produced it.
// Only accepted attempts become Generations.
type Generation struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	Keyword      string     `gorm:"type:text;not null;index:idx_generations_keyword" json:"keyword"`
	TemplateID   string     `gorm:"type:text;not null" json:"template_id"`
	TemplateName string     `gorm:"type:text" json:"template_name"`
	TopText      string     `gorm:"type:text" json:"top_text"`
	BottomText   string     `gorm:"type:text" json:"bottom_text"`
	Score        HumorScore `json:"score"`
	URL          string     `gorm:"type:text;not null" json:"url"`
	ArchiveKey   string     `gorm:"type:text" json:"archive_key,omitempty"`
	ArchiveURL   string     `gorm:"type:text" json:"archive_url,omitempty"`
	Width        int        `json:"width,omitempty"`
	Height       int        `json:"height,omitempty"`
	AttemptsUsed int        `json:"attempts_used"`
	CreatedAt    time.Time  `gorm:"index:idx_generations_created_at" json:"created_at"`
}

// TableName returns the database table name for Generation.
func (Generation) TableName() string {
	return "generations"
}

// Caption returns the accepted caption pair.
func (g *Generation) Caption() Caption {
	return Caption{Top: g.TopText, Bottom: g.BottomText}
}
