package domain

// Template is a named visual layout captions are rendered onto.
// A template is resolved fresh for every attempt and never mutated afterwards.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"url"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	BoxCount int    `json:"box_count,omitempty"`
}

// IsZero reports whether the template carries no identifier.
func (t Template) IsZero() bool {
	return t.ID == ""
}
