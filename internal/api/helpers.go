package api

import (
	"encoding/json"
	"net/http"
)

// requireMethod validates that the request uses the given HTTP method.
// Returns false after writing a 405 response when it does not.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// tickerDateParams extracts the ticker and date query parameters.
// Returns false after writing a 400 response when either is missing.
func tickerDateParams(w http.ResponseWriter, r *http.Request) (ticker, date string, ok bool) {
	ticker = r.URL.Query().Get("ticker")
	date = r.URL.Query().Get("date")
	if ticker == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "ticker and date query parameters are required",
		})
		return "", "", false
	}
	return ticker, date, true
}
