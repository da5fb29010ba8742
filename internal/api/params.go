package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxGraphNameLen = 255

// graphParam returns the :name path parameter. It writes a 400 and returns
// false when the name is empty or too long.
func graphParam(c *gin.Context) (string, bool) {
	name := c.Param("name")

	switch {
	case name == "":
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "graph name must not be empty")
		return "", false
	case len(name) > maxGraphNameLen:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "graph name exceeds 255 bytes")
		return "", false
	}

	return name, true
}
