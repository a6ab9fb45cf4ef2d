// Package root отдает приветствие API.
package root

import (
	"net/http"

	"github.com/go-chi/render"
)

// Banner — текст приветствия.
const Banner = "SafeZone API - Segurança Comunitária"

// ServeHTTP godoc
// @Summary Приветствие API
// @Tags System
// @Produce  json
// @Success 200 {object} map[string]string
// @Router / [get]
func ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"message": Banner})
}
