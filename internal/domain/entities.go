package domain

// Work is one indexed exhibition work. The field set is fixed: it mirrors
// the columns of the curated works catalog and is not extensible at runtime.
type Work struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Authors        string `json:"authors" yaml:"authors"`
	Advisor        string `json:"advisor" yaml:"advisor"`
	Category       string `json:"category" yaml:"category"`
	Form           string `json:"form" yaml:"form"`
	Description    string `json:"description" yaml:"description"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
	Motivation     string `json:"motivation" yaml:"motivation"`
	Inspiration    string `json:"inspiration" yaml:"inspiration"`
	Purpose        string `json:"purpose" yaml:"purpose"`
	Style          string `json:"style" yaml:"style"`
	VisualLanguage string `json:"visual_language" yaml:"visual_language"`
	Technical      string `json:"technical" yaml:"technical"`
	ExpectedEffect string `json:"expected_effect" yaml:"expected_effect"`
	Process        string `json:"process" yaml:"process"`
	Challenges     string `json:"challenges" yaml:"challenges"`
	Zone           string `json:"zone" yaml:"zone"`
}

// ScoredWork pairs a resolved work with its similarity score.
type ScoredWork struct {
	Work  Work
	Score float64
}

// Hit is one raw index match before record resolution.
type Hit struct {
	ID    string
	Score float64
}

// Status describes the lifecycle state of a retriever instance.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// RetrieverStats is the fixed-field statistics summary exposed to callers.
type RetrieverStats struct {
	TotalDocuments int    `json:"total_documents"`
	EmbeddingModel string `json:"embedding_model"`
	Status         Status `json:"status"`
	DatabasePath   string `json:"database_path"`
}
