package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	maxPageSize = 100
	// maxPage keeps page*limit far from int overflow.
	maxPage = 1_000_000
)

// pagination is a page-number request resolved to limit/offset.
type pagination struct {
	page  int
	limit int
}

func (p pagination) offset() int {
	return (p.page - 1) * p.limit
}

// parsePagination reads ?page= and ?limit=, falling back to defaultSize.
func parsePagination(c *gin.Context, defaultSize int) (pagination, error) {
	p := pagination{page: 1, limit: defaultSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPage {
			return p, apperr.NewValidationError("page", "invalid page")
		}
		p.page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperr.NewValidationError("limit", "limit must be a positive integer")
		}
		p.limit = min(n, maxPageSize)
	}
	return p, nil
}

// newPage wraps results in the list envelope with absolute next/previous
// links that keep the other query parameters.
func newPage[T any](c *gin.Context, p pagination, results []T, total int64) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := types.Page[T]{Count: total, Results: results}
	if int64(p.page*p.limit) < total {
		next := pageURL(c, p.page+1)
		page.Next = &next
	}
	if p.page > 1 {
		prev := pageURL(c, p.page-1)
		page.Previous = &prev
	}
	return page
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

// idParam parses a numeric path parameter; anything else is a missing
// resource.
func idParam(c *gin.Context, name, resource string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NewNotFoundError(resource, raw)
	}
	return uint(id), nil
}

// optionalInt parses an optional non-negative integer query parameter.
func optionalInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.NewValidationError(name, name+" must be a non-negative integer")
	}
	return n, nil
}

// queryFlag reads boolean filters sent as 1/0 or true/false.
func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}

// fail attaches err for the error middleware to render.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bindJSON decodes the body into req, recording binding failures.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}
