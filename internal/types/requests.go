package types

// ConversationRequest is one user message posted by a chat front-end
type ConversationRequest struct {
	Text string `json:"text"`
}

// ConversationReply is what the front-end should show back to the user
type ConversationReply struct {
	Text     string           `json:"text"`
	Books    []Recommendation `json:"books,omitempty"`
	Degraded bool             `json:"degraded,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx answer
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}
