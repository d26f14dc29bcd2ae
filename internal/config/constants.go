package config

import "time"

const (
	// Message history
	DefaultPageSize  = 50
	MaxPageSize      = 200
	MaxMessageLength = 4000 // runes

	// Mentor requests
	MaxRequestMessageLength = 1000

	// Websocket
	WSWriteWait      = 10 * time.Second
	WSPongWait       = 60 * time.Second
	WSPingPeriod     = (WSPongWait * 9) / 10
	WSMaxMessageSize = 16 * 1024
	WSSendBuffer     = 256

	// Passwords
	MinPasswordLength = 8

	// Email tasks
	EmailQueue       = "notifications"
	EmailMaxRetry    = 3
	EmailTaskTimeout = 30 * time.Second
)
