package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

// Every endpoint speaks the same envelope: {ok:true, data, disclaimer?} on
// success, {ok:false, error} on failure.

func respondOK(w http.ResponseWriter, req *http.Request, data any) {
	render.JSON(w, req, map[string]any{"ok": true, "data": data})
}

func respondOKDisclaimer(w http.ResponseWriter, req *http.Request, data any, disclaimer string) {
	render.JSON(w, req, map[string]any{"ok": true, "data": data, "disclaimer": disclaimer})
}

func respondErr(w http.ResponseWriter, req *http.Request, status int, msg string) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"ok": false, "error": msg})
}
