package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk.app/triage/internal/http/dto"
	"helpdesk.app/triage/internal/stream"
)

// QuestionProcessor answers one question on a thread. It never fails: errors
// surface as readable answer text.
type QuestionProcessor interface {
	Process(ctx context.Context, question, threadID string) string
}

type ChatHandler struct {
	processor QuestionProcessor
	streamer  *stream.Streamer
}

func NewChatHandler(processor QuestionProcessor, streamer *stream.Streamer) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		streamer:  streamer,
	}
}

// Chat answers a question and streams the answer back over SSE as
// `data: {"chunk": ...}` frames. The final frame carries the [DONE]
// sentinel as its chunk value.
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid chat request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := h.processor.Process(ctx, req.Message, req.ThreadID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)

	err := h.streamer.Stream(ctx, answer, func(chunk string) error {
		frame, err := encodeFrame(chunk)
		if err != nil {
			return err
		}
		if _, err := c.Writer.Write(frame); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// Client went away mid-stream; nothing to send back.
		slog.WarnContext(ctx, "chat stream interrupted", "error", err)
	}
}

// encodeFrame renders one SSE data frame. Every payload is a JSON chunk
// event, the done sentinel included, so clients can parse each frame the
// same way and compare the chunk value to detect completion.
func encodeFrame(chunk string) ([]byte, error) {
	payload, err := json.Marshal(dto.ChunkEvent{Chunk: chunk})
	if err != nil {
		return nil, err
	}
	return append(append([]byte("data: "), payload...), '\n', '\n'), nil
}
