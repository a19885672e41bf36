package history

import "time"

// Entry is one finished transcription.
type Entry struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Filename    string    `json:"filename"`
	Language    string    `gorm:"index" json:"language,omitempty"`
	Backend     string    `gorm:"not null;index" json:"backend"`
	Text        string    `gorm:"type:text" json:"text"`
	FailureKind string    `json:"failure_kind,omitempty"`
	Degraded    bool      `json:"degraded"`
	Cached      bool      `json:"cached"`
	InputBytes  int64     `json:"input_bytes"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Entry) TableName() string {
	return "transcriptions"
}

func (e *Entry) Failed() bool {
	return e.FailureKind != ""
}
