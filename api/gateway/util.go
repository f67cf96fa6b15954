package gateway

import (
	"encoding/json"
	"net/http"
)

func writeError(w http.ResponseWriter, statusCode int, endpoint string, err error) {
	log.Debugw("request failed", "endpoint", endpoint, "err", err)

	w.WriteHeader(statusCode)

	errBody, jerr := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
	if jerr != nil {
		log.Errorw("marshaling error response", "endpoint", endpoint, "err", jerr)
		return
	}

	_, err = w.Write(errBody)
	if err != nil {
		log.Errorw("writing error response", "endpoint", endpoint, "err", err)
	}
}
