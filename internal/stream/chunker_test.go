package stream_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"helpdesk.app/triage/internal/stream"
)

var _ = Describe("Split", func() {
	It("splits text into fixed-size chunks preserving order", func() {
		chunks := stream.Split(strings.Repeat("a", 320), 150)
		Expect(chunks).To(HaveLen(3))
		Expect(chunks[0]).To(HaveLen(150))
		Expect(chunks[1]).To(HaveLen(150))
		Expect(chunks[2]).To(HaveLen(20))
		Expect(strings.Join(chunks, "")).To(Equal(strings.Repeat("a", 320)))
	})

	It("returns one chunk when the text fits", func() {
		Expect(stream.Split("short", 150)).To(Equal([]string{"short"}))
	})

	It("returns nothing for empty text", func() {
		Expect(stream.Split("", 150)).To(BeEmpty())
	})

	It("never cuts a multi-byte character in half", func() {
		text := strings.Repeat("é", 151)
		chunks := stream.Split(text, 150)
		Expect(chunks).To(HaveLen(2))
		Expect([]rune(chunks[0])).To(HaveLen(150))
		Expect(chunks[1]).To(Equal("é"))
	})
})

var _ = Describe("Streamer", func() {
	It("delivers chunks in order and terminates with the sentinel", func() {
		s := stream.NewStreamer(150, 0)

		var got []string
		err := s.Stream(context.Background(), strings.Repeat("x", 320), func(chunk string) error {
			got = append(got, chunk)
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(4))
		Expect(got[3]).To(Equal(stream.DoneSentinel))
		Expect(strings.Join(got[:3], "")).To(Equal(strings.Repeat("x", 320)))
	})

	It("sends only the sentinel for an empty answer", func() {
		s := stream.NewStreamer(150, 0)

		var got []string
		err := s.Stream(context.Background(), "", func(chunk string) error {
			got = append(got, chunk)
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{stream.DoneSentinel}))
	})

	It("stops on send error", func() {
		s := stream.NewStreamer(10, 0)

		sends := 0
		err := s.Stream(context.Background(), strings.Repeat("x", 100), func(string) error {
			sends++
			if sends == 2 {
				return errors.New("client gone")
			}
			return nil
		})

		Expect(err).To(MatchError("client gone"))
		Expect(sends).To(Equal(2))
	})

	It("stops on context cancellation between chunks", func() {
		s := stream.NewStreamer(10, time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Stream(ctx, strings.Repeat("x", 100), func(string) error {
			Fail("no chunk should be sent after cancellation")
			return nil
		})

		Expect(err).To(MatchError(context.Canceled))
	})
})
