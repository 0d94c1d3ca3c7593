package security

import "net/http"

// BodyLimit caps inbound payload size. POS requests are small JSON bodies,
// so anything past the cap is a misbehaving client.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized requests with HTTP 413. Declared lengths are
// checked up front; chunked bodies are capped while the handler reads.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
