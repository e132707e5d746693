package httpserver

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithDecompression(t *testing.T) {
	t.Parallel()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(`{"frames":[]}`)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	testCases := []struct {
		name     string
		encoding string
		body     []byte
		status   int
		want     string
	}{
		{name: "Identity", body: []byte(`{"frames":[]}`), status: http.StatusOK, want: `{"frames":[]}`},
		{name: "Gzip", encoding: "gzip", body: gz.Bytes(), status: http.StatusOK, want: `{"frames":[]}`},
		{name: "BrokenGzip", encoding: "gzip", body: []byte("plain"), status: http.StatusBadRequest},
		{name: "Unsupported", encoding: "deflate", body: []byte("x"), status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got []byte
			handler := withDecompression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Encoding") != "" {
					t.Errorf("Content-Encoding should be cleared after decoding")
				}
				data, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				got = data
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(tc.body))
			if tc.encoding != "" {
				req.Header.Set("Content-Encoding", tc.encoding)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			if tc.want != "" && string(got) != tc.want {
				t.Fatalf("unexpected body %q", got)
			}
		})
	}
}
