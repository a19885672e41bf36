package dto

type HistoryEntryResponse struct {
	ID          string `json:"id" example:"tr_3f2b8c1e-5a7d-4e0b-9c61-1f2a3b4c5d6e"`
	Filename    string `json:"filename" example:"meeting.wav"`
	Language    string `json:"language,omitempty" example:"vi"`
	Backend     string `json:"backend" example:"remote"`
	Text        string `json:"text" example:"xin chào các bạn"`
	Success     bool   `json:"success" example:"true"`
	FailureKind string `json:"failure_kind,omitempty" example:"rate_limited"`
	Degraded    bool   `json:"degraded"`
	Cached      bool   `json:"cached"`
	FileSize    int64  `json:"file_size" example:"482310"`
	ElapsedMs   int64  `json:"elapsed_ms" example:"1270"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type HistoryListResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int64                  `json:"total" example:"42"`
}
