package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

// InvalidIDMessage is reported when a path ID is not an integer
const InvalidIDMessage = "ID must be an integer"

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid JSON: request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathID extracts an integer ID path parameter
func ParsePathID(r *http.Request, key string) (int64, error) {
	str := mux.Vars(r)[key]
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, ValidationFailed(validation.ParamError(key, InvalidIDMessage))
	}
	return val, nil
}

// ParsePathIDOrError extracts an ID path parameter and writes error on failure
func ParsePathIDOrError(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	val, err := ParsePathID(r, key)
	if err != nil {
		WriteAppError(w, r, err)
		return 0, false
	}
	return val, true
}
