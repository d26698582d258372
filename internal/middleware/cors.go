package middleware

import "net/http"

// CORS stamps the fixed permissive cross-origin headers on every response,
// including error paths, and answers any OPTIONS request with 204 and no
// body. The API is called from browser origins other than the one serving
// it, so the headers are unconditional rather than Origin-reflecting.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
