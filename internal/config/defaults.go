package config

import "time"

const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath = "storage.db"

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiImageModel  = "imagen-3.0-generate-002"
	DefaultGeminiTemperature = 1.0
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 5

	DefaultInitMessage      = "You are a capable assistant."
	DefaultMaxHistoryLength = 20

	DefaultUpdateBaseURL = "https://raw.githubusercontent.com/scopebot/scopebot"
	DefaultUpdateBranch  = "master"
	DefaultUpdateTimeout = 10 * time.Second
)
