package web

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteMessage wraps a plain message in the {"response": ...} envelope used
// for every non-payload reply, rejection or otherwise.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"response": message})
}
