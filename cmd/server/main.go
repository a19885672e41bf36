package main

import (
	_ "github.com/eleven-am/whisper-gateway/docs"
	"github.com/eleven-am/whisper-gateway/internal/bootstrap"
)

// @title Whisper Speech-to-Text API
// @version 1.0.0
// @description Speech-to-text gateway with remote, OpenAI and local Whisper backends

// @BasePath /

func main() {
	bootstrap.Run()
}
