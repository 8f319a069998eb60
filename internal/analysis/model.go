package analysis

import "time"

// Analysis type identifiers persisted with results.
const (
	TypeQuickRFPAnalysis = "quick_rfp_analysis"
	TypeCustomAnalysis   = "custom_analysis"
)

// Result is one persisted analysis run. Created once, immutable thereafter.
type Result struct {
	ID           string            `json:"id"`
	UserID       string            `json:"-"`
	AnalysisType string            `json:"analysisType"`
	DocumentIDs  []string          `json:"documentIds"`
	Questions    []string          `json:"questions"`
	Answers      map[string]string `json:"answers"`
	Model        string            `json:"model"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Stats summarizes a user's analysis history.
type Stats struct {
	Total         int            `json:"total"`
	ByType        map[string]int `json:"byType"`
	DailyActivity []DailyCount   `json:"dailyActivity"`
}

// DailyCount is one day's analysis volume.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
