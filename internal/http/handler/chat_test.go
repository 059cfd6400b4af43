package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/internal/http/handler"
	"helpdesk.app/triage/internal/stream"
)

// parseFrames splits an SSE body into its data payloads.
func parseFrames(body string) []string {
	var frames []string
	for _, line := range strings.Split(body, "\n") {
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			frames = append(frames, after)
		}
	}
	return frames
}

var _ = Describe("ChatHandler", func() {
	var (
		router    *gin.Engine
		processor *mockProcessor
	)

	newRouter := func(chunkSize int) {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		h := handler.NewChatHandler(processor, stream.NewStreamer(chunkSize, 0))
		router.POST("/chat", h.Chat)
	}

	BeforeEach(func() {
		processor = &mockProcessor{}
		newRouter(150)
	})

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("streams the answer as JSON chunk frames terminated by the sentinel", func() {
		processor.processFn = func(_ context.Context, question, threadID string) string {
			Expect(question).To(Equal("what are your fees"))
			Expect(threadID).To(Equal("t1"))
			return strings.Repeat("a", 320)
		}

		w := post(`{"message": "what are your fees", "thread_id": "t1"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/event-stream"))

		frames := parseFrames(w.Body.String())
		Expect(frames).To(HaveLen(4))
		Expect(frames[3]).To(MatchJSON(`{"chunk": "[DONE]"}`))

		var rebuilt strings.Builder
		for _, frame := range frames[:3] {
			var event map[string]string
			Expect(json.Unmarshal([]byte(frame), &event)).To(Succeed())
			rebuilt.WriteString(event["chunk"])
		}
		Expect(rebuilt.String()).To(Equal(strings.Repeat("a", 320)))
	})

	It("caps each chunk frame at the configured size", func() {
		newRouter(10)
		processor.processFn = func(context.Context, string, string) string {
			return strings.Repeat("b", 25)
		}

		w := post(`{"message": "hi"}`)

		frames := parseFrames(w.Body.String())
		Expect(frames).To(HaveLen(4))
		for _, frame := range frames[:3] {
			var event map[string]string
			Expect(json.Unmarshal([]byte(frame), &event)).To(Succeed())
			Expect(len(event["chunk"])).To(BeNumerically("<=", 10))
		}
	})

	It("wraps the done sentinel in the same JSON shape as every chunk", func() {
		processor.processFn = func(context.Context, string, string) string {
			return "short answer"
		}

		w := post(`{"message": "hi"}`)

		frames := parseFrames(w.Body.String())
		Expect(frames).NotTo(BeEmpty())

		var event map[string]string
		Expect(json.Unmarshal([]byte(frames[len(frames)-1]), &event)).To(Succeed())
		Expect(event["chunk"]).To(Equal(stream.DoneSentinel))
	})

	It("omits the thread id when the caller sends none", func() {
		var gotThread string
		processor.processFn = func(_ context.Context, _, threadID string) string {
			gotThread = threadID
			return "ok"
		}

		w := post(`{"message": "hello"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gotThread).To(BeEmpty())
	})

	It("rejects a request without a message", func() {
		w := post(`{"thread_id": "t1"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed JSON", func() {
		w := post(`{`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a message longer than 2000 characters", func() {
		w := post(`{"message": "` + strings.Repeat("a", 2001) + `"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("accepts a message of exactly 2000 characters", func() {
		processor.processFn = func(context.Context, string, string) string {
			return "ok"
		}

		w := post(`{"message": "` + strings.Repeat("a", 2000) + `"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})
