package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies an event on the Coda WebSocket stream.
type Type string

const (
	// System events
	SystemInfo    Type = "system_info"
	SystemError   Type = "system_error"
	SystemMetrics Type = "system_metrics"

	// STT events
	STTStart   Type = "stt_start"
	STTInterim Type = "stt_interim"
	STTResult  Type = "stt_result"
	STTError   Type = "stt_error"

	// LLM events
	LLMStart  Type = "llm_start"
	LLMToken  Type = "llm_token"
	LLMResult Type = "llm_result"
	LLMError  Type = "llm_error"

	// TTS events
	TTSStart    Type = "tts_start"
	TTSProgress Type = "tts_progress"
	TTSResult   Type = "tts_result"
	TTSError    Type = "tts_error"

	// Memory events
	MemoryStore    Type = "memory_store"
	MemoryRetrieve Type = "memory_retrieve"
	MemoryUpdate   Type = "memory_update"

	// Tool events
	ToolCall   Type = "tool_call"
	ToolResult Type = "tool_result"
	ToolError  Type = "tool_error"

	// Conversation events
	ConversationStart Type = "conversation_start"
	ConversationTurn  Type = "conversation_turn"
	ConversationEnd   Type = "conversation_end"

	// Performance events
	LatencyTrace    Type = "latency_trace"
	ComponentTiming Type = "component_timing"
	ComponentStats  Type = "component_stats"

	// Replay carries buffered events re-sent to a newly connected client.
	Replay Type = "replay"
)

// ErrMissingType is returned for envelopes without a type field.
var ErrMissingType = errors.New("event missing type")

// Envelope is the versioned wrapper around every event on the wire.
// Timestamp is seconds since epoch as emitted by the backend.
type Envelope struct {
	Version   string                 `json:"version,omitempty"`
	Seq       int64                  `json:"seq"`
	Timestamp float64                `json:"timestamp"`
	Type      Type                   `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`

	// Events is populated for replay envelopes only.
	Events []Envelope `json:"events,omitempty"`
}

// Decode parses a raw wire message into an Envelope. Envelopes without a
// type are rejected.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// String reads a string value out of the event data, returning "" when
// absent or of another type.
func (e Envelope) String(key string) string {
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// Float reads a numeric value out of the event data. JSON numbers decode
// as float64, so integers pass through here as well.
func (e Envelope) Float(key string) (float64, bool) {
	v, ok := e.Data[key].(float64)
	return v, ok
}

// IsError reports whether the event signals a failure in some component.
func (e Envelope) IsError() bool {
	switch e.Type {
	case SystemError, STTError, LLMError, TTSError, ToolError:
		return true
	}
	return false
}
