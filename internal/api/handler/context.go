package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// pageParams reads the page and limit query parameters. Missing or malformed
// values are returned as zero and normalised by the services.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}
