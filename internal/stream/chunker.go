package stream

import (
	"context"
	"time"
)

// DoneSentinel terminates every chunk sequence.
const DoneSentinel = "[DONE]"

// Split slices text into chunks of at most size runes, preserving order.
// Rune-based so a multi-byte character is never cut in half.
func Split(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Streamer delivers an already-computed answer as a paced sequence of
// chunks followed by the done sentinel. This is chunked delivery, not
// incremental generation: the full answer exists before the first chunk.
type Streamer struct {
	chunkSize int
	delay     time.Duration
}

func NewStreamer(chunkSize int, delay time.Duration) *Streamer {
	return &Streamer{chunkSize: chunkSize, delay: delay}
}

// Stream sends each chunk through send, pausing delay before each one, then
// sends the sentinel. A send error (caller disconnected) or context
// cancellation stops delivery; there is nothing to cancel upstream since the
// answer is already complete.
func (s *Streamer) Stream(ctx context.Context, answer string, send func(chunk string) error) error {
	for _, chunk := range Split(answer, s.chunkSize) {
		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
		if err := send(chunk); err != nil {
			return err
		}
	}
	return send(DoneSentinel)
}
