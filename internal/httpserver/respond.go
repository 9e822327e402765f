package httpserver

import (
	"encoding/json"
	"net/http"
	"regexp"
)

// callbackPattern restricts JSONP callback names to plain identifier paths
// so a callback parameter cannot inject script.
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// writeJSON serializes v as the response body. When the request carries a
// valid "callback" query parameter the body is wrapped for JSONP script-tag
// consumption instead; the HTTP status still applies either way.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if cb := r.URL.Query().Get("callback"); cb != "" && callbackPattern.MatchString(cb) {
		writeJSONP(w, status, cb, v)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONP(w http.ResponseWriter, status int, callback string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "serialization failure", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	// Stops some reflected-content attacks on older browsers.
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte("/**/" + callback + "("))
	w.Write(body)
	w.Write([]byte(");"))
}
