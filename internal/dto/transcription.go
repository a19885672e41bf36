package dto

type ServiceInfoResponse struct {
	Message string `json:"message" example:"Whisper Speech-to-Text API"`
	Version string `json:"version" example:"1.0.0"`
	Status  string `json:"status" example:"running"`
	Backend string `json:"backend,omitempty" example:"remote"`
	Docs    string `json:"docs" example:"/swagger/index.html"`
	Health  string `json:"health" example:"/health"`
}

type TranscriptionResponse struct {
	Transcription  string  `json:"transcription" example:"xin chào các bạn"`
	Filename       string  `json:"filename" example:"meeting.wav"`
	Language       *string `json:"language" example:"vi"`
	ProcessingTime float64 `json:"processing_time" example:"1.27"`
	FileSize       int64   `json:"file_size" example:"482310"`
	Backend        string  `json:"backend" example:"remote"`
	Success        bool    `json:"success" example:"true"`
	FailureKind    string  `json:"failure_kind,omitempty" example:"model_loading"`
	Degraded       bool    `json:"degraded,omitempty"`
	Cached         bool    `json:"cached,omitempty"`
	Timestamp      float64 `json:"timestamp" example:"1718000000.52"`
}

type BatchItemResponse struct {
	Filename      string  `json:"filename" example:"clip-1.mp3"`
	Transcription *string `json:"transcription,omitempty" example:"hello world"`
	Error         *string `json:"error,omitempty" example:"Rate limit exceeded, please retry later"`
	FileSize      int64   `json:"file_size" example:"102400"`
	Success       bool    `json:"success" example:"true"`
}

type BatchTranscriptionResponse struct {
	Results        []BatchItemResponse `json:"results"`
	TotalFiles     int                 `json:"total_files" example:"3"`
	ProcessingTime float64             `json:"processing_time" example:"4.81"`
	Language       *string             `json:"language" example:"en"`
	Timestamp      float64             `json:"timestamp" example:"1718000000.52"`
}

type LanguagesResponse struct {
	APIProvider        string            `json:"api_provider" example:"Hugging Face Inference API"`
	Model              string            `json:"model" example:"openai/whisper-small"`
	SupportedLanguages map[string]string `json:"supported_languages"`
	Total              int               `json:"total" example:"20"`
	Note               string            `json:"note,omitempty"`
}

// OpenAITranscriptionResponse mirrors the OpenAI audio API json format.
type OpenAITranscriptionResponse struct {
	Text string `json:"text" example:"hello world"`
}

type OpenAIVerboseTranscriptionResponse struct {
	Task     string  `json:"task" example:"transcribe"`
	Language string  `json:"language" example:"en"`
	Duration float64 `json:"duration" example:"3.5"`
	Text     string  `json:"text" example:"hello world"`
}

// StreamMessage is exchanged as JSON text frames on the websocket endpoint.
type StreamMessage struct {
	Type           string  `json:"type" example:"result"`
	Language       string  `json:"language,omitempty" example:"vi"`
	Filename       string  `json:"filename,omitempty" example:"stream.wav"`
	Format         string  `json:"format,omitempty" example:"pcm16"`
	SampleRate     int     `json:"sample_rate,omitempty" example:"16000"`
	Transcription  string  `json:"transcription,omitempty"`
	Success        bool    `json:"success,omitempty"`
	Backend        string  `json:"backend,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	Received       int64   `json:"received,omitempty"`
	Code           string  `json:"code,omitempty"`
	Message        string  `json:"message,omitempty"`
}
