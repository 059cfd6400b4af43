package dto

type ChatRequest struct {
	Message  string `json:"message" binding:"required,max=2000"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChunkEvent is one SSE data frame of a streamed answer.
type ChunkEvent struct {
	Chunk string `json:"chunk"`
}
