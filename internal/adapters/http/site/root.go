// Package site serves the embedded prediction form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded form page to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/", http.FileServer(FS()))
}
