package predict

import (
	"github.com/iksnae/govchat/internal"
)

// Request is the body of both prediction endpoints
type Request struct {
	Question    string                 `json:"question"`
	Memory      []internal.MemoryEntry `json:"memory"`
	ShouldError bool                   `json:"shouldError,omitempty"`
}

// Response is the body returned by the single-shot endpoint
type Response struct {
	Data  internal.Data `json:"data"`
	Error *string       `json:"error"`
}

// NewRequest builds a request for question with the conversation so far as
// memory
func NewRequest(question string, history []internal.Message) Request {
	return Request{
		Question: question,
		Memory:   internal.GenerateMessagesMemory(history),
	}
}
