package types

const (
	ContextIdentityKey  = "identity"
	ContextRequestIDKey = "request_id"

	RequestIDHeader = "X-Request-ID"
)

const (
	FeedConnected = "connected"
	FeedRefresh   = "refresh"
)

// FeedEvent is pushed to admin dashboard sockets after a mutation.
type FeedEvent struct {
	Type     string `json:"type"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
	Message  string `json:"message,omitempty"`
}
