package advisory

import (
	"context"
	"time"
)

// Failure tags why an advisory call did not produce an answer.
type Failure string

const (
	FailureNone              Failure = ""
	FailureConnectionRefused Failure = "connection_refused"
	FailureDNS               Failure = "dns"
	FailureTimeout           Failure = "timeout"
	FailureServerError       Failure = "server_error"
	FailureCircuitOpen       Failure = "circuit_open"
	FailureNetwork           Failure = "network"
	FailureInvalidResponse   Failure = "invalid_response"
)

// Provider is the advisory chatbot as seen by the chat services.
type Provider interface {
	Ask(ctx context.Context, prompt string, uiSessionID uint) AskResult
	CheckStatus(ctx context.Context) StatusResult
}

type AskResult struct {
	Success        bool
	Question       string
	Answer         string
	Timestamp      interface{}
	ProcessingTime interface{}
	ResponseTime   time.Duration
	Failure        Failure
	Reason         string
}

type StatusResult struct {
	Online        bool
	Status        string
	PythonWorking bool
	Message       string
	ResponseTime  time.Duration
}

type askRequest struct {
	Message     string `json:"message"`
	UISessionID uint   `json:"ui_session_id"`
}

type askResponse struct {
	Response       string      `json:"response"`
	Answer         string      `json:"answer"`
	Question       string      `json:"question"`
	Timestamp      interface{} `json:"timestamp"`
	ProcessingTime interface{} `json:"processing_time"`
}

type statusResponse struct {
	Status        string `json:"status"`
	PythonWorking bool   `json:"pythonWorking"`
	Message       string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
