package domain

// Caption is a candidate top/bottom text pair for a template.
type Caption struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// Complete reports whether both lines are non-empty.
func (c Caption) Complete() bool {
	return c.Top != "" && c.Bottom != ""
}

// HumorScore is a 0-10 rating; 0 means the reply could not be scored.
type HumorScore int

const (
	MinHumorScore HumorScore = 0
	MaxHumorScore HumorScore = 10
)
