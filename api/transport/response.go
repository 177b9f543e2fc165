package transport

import "encoding/json"

// Envelope wraps every JSON body the API writes.
type Envelope struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Message is the payload of mutations that only report their outcome.
type Message struct {
	Message string `json:"message"`
}

func NewSuccess(data any) Envelope {
	return Envelope{Status: "success", Data: data}
}

func NewMessage(text string) Envelope {
	return NewSuccess(Message{Message: text})
}

func NewError(code, message string) Envelope {
	return Envelope{Status: "error", Code: code, Error: message}
}

// WithDetails attaches structured context, e.g. which dependencies are down.
func (e Envelope) WithDetails(details any) Envelope {
	e.Details = details
	return e
}

// String returns the JSON form for logging.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
