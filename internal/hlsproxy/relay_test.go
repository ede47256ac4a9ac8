package hlsproxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubOpener struct {
	resp *http.Response
	err  error
	got  string
}

func (s *stubOpener) OpenSegment(_ context.Context, segmentURL string, _ http.Header) (*http.Response, error) {
	s.got = segmentURL
	return s.resp, s.err
}

func TestRelay_Open(t *testing.T) {
	repo := NewInMemoryTokenRepository(10, DefaultTokenTTL)
	opener := &stubOpener{resp: &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}}
	relay := NewRelay(repo, opener)

	t.Run("unknown_token", func(t *testing.T) {
		_, err := relay.Open(context.Background(), Token("doesnotexist"), http.Header{})
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
		}
		if opener.got != "" {
			t.Errorf("upstream should not be contacted, got %q", opener.got)
		}
	})

	t.Run("resolves_and_opens", func(t *testing.T) {
		token := repo.Issue("https://cdn/a/seg.ts")
		resp, err := relay.Open(context.Background(), token, http.Header{})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		resp.Body.Close()
		if opener.got != "https://cdn/a/seg.ts" {
			t.Errorf("opened %q", opener.got)
		}
	})
}

type failingReader struct {
	data []byte
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestRelay_Forward(t *testing.T) {
	relay := NewRelay(nil, nil)

	t.Run("copies_status_headers_body", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusPartialContent,
			Header: http.Header{
				"Content-Type":      {"video/mp2t"},
				"Content-Range":     {"bytes 0-3/10"},
				"Connection":        {"keep-alive, X-Hop"},
				"X-Hop":             {"1"},
				"Transfer-Encoding": {"chunked"},
			},
			Body: io.NopCloser(strings.NewReader("abcd")),
		}
		rec := httptest.NewRecorder()

		n, err := relay.Forward(rec, resp)
		if err != nil || n != 4 {
			t.Fatalf("Forward: n=%d err=%v", n, err)
		}
		if rec.Code != http.StatusPartialContent {
			t.Errorf("status: got %d", rec.Code)
		}
		if !rec.Flushed {
			t.Error("expected body to be flushed")
		}
		if rec.Body.String() != "abcd" {
			t.Errorf("body: got %q", rec.Body.String())
		}
		h := rec.Header()
		if h.Get("Content-Type") != "video/mp2t" || h.Get("Content-Range") != "bytes 0-3/10" {
			t.Errorf("end-to-end headers missing: %v", h)
		}
		for _, k := range []string{"Connection", "X-Hop", "Transfer-Encoding"} {
			if h.Get(k) != "" {
				t.Errorf("hop-by-hop header %s forwarded", k)
			}
		}
	})

	t.Run("mid_stream_failure", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(&failingReader{data: []byte("partial")}),
		}
		rec := httptest.NewRecorder()

		n, err := relay.Forward(rec, resp)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("expected copy error, got %v", err)
		}
		if n != int64(len("partial")) {
			t.Errorf("bytes copied: got %d", n)
		}
	})
}

func TestCopyRequestHeaders(t *testing.T) {
	src := http.Header{}
	src.Set("Range", "bytes=0-")
	src.Set("If-None-Match", `"abc"`)
	src.Set("Cookie", "session=1")
	src.Set("Authorization", "Bearer x")

	dst := http.Header{}
	copyRequestHeaders(dst, src)

	if dst.Get("Range") != "bytes=0-" || dst.Get("If-None-Match") != `"abc"` {
		t.Errorf("forwarded headers missing: %v", dst)
	}
	if dst.Get("Cookie") != "" || dst.Get("Authorization") != "" {
		t.Errorf("client credentials must not reach the origin: %v", dst)
	}
}
