// Package pagination extracts skip/take listing windows from HTTP requests.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Window is an offset-based slice of a result set. Take of zero means no
// limit; Skip of zero starts at the first row.
type Window struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
}

// FromRequest extracts the skip and take query parameters. Absent parameters
// default to zero. Negative or non-numeric values are rejected.
func FromRequest(r *http.Request) (Window, error) {
	var w Window

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Window{}, fmt.Errorf("skip must be a non-negative integer")
		}
		w.Skip = n
	}

	if v := r.URL.Query().Get("take"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Window{}, fmt.Errorf("take must be a non-negative integer")
		}
		w.Take = n
	}

	return w, nil
}
