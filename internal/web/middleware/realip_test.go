package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func remoteAddrSpy(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}), &seen
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies keeps remote addr",
			trusted:    nil,
			remoteAddr: "203.0.113.7:4411",
			headers:    map[string]string{"X-Real-IP": "10.0.0.1"},
			want:       "203.0.113.7:4411",
		},
		{
			name:       "trusted proxy honors x-real-ip",
			trusted:    []string{"127.0.0.0/8"},
			remoteAddr: "127.0.0.1:9000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.5"},
			want:       "198.51.100.5",
		},
		{
			name:       "trusted proxy takes first forwarded-for hop",
			trusted:    []string{"127.0.0.0/8"},
			remoteAddr: "127.0.0.1:9000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.5, 10.0.0.2"},
			want:       "198.51.100.5",
		},
		{
			name:       "untrusted source cannot spoof",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.7:4411",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.5"},
			want:       "203.0.113.7:4411",
		},
		{
			name:       "invalid header value ignored",
			trusted:    []string{"127.0.0.0/8"},
			remoteAddr: "127.0.0.1:9000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "127.0.0.1:9000",
		},
		{
			name:       "single ip accepted as trusted entry",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.5"},
			want:       "198.51.100.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, seen := remoteAddrSpy(t)
			handler := TrustedRealIP(tt.trusted)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if *seen != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", *seen, tt.want)
			}
		})
	}
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusTeapot)
	ww.WriteHeader(http.StatusOK) // second call ignored
	ww.Write([]byte("hello"))

	if ww.status != http.StatusTeapot {
		t.Errorf("status = %d, want %d", ww.status, http.StatusTeapot)
	}
	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("recorded code = %d", rec.Code)
	}
}

func TestResponseWriter_ImplicitHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.Write([]byte("ok"))

	if ww.status != http.StatusOK {
		t.Errorf("status = %d, want 200", ww.status)
	}
}
