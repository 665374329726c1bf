package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders writes RFC 8288 pagination links (first/prev/next/last)
// for the current page.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	rels := []struct {
		name   string
		offset int
		want   bool
	}{
		{"first", 0, true},
		{"prev", max(p.Offset-p.Limit, 0), p.Offset > 0},
		{"next", p.Offset + p.Limit, p.Offset+p.Limit < p.Total},
		{"last", max(p.Total-p.Limit, 0), true},
	}

	links := make([]string, 0, len(rels))
	for _, r := range rels {
		if !r.want {
			continue
		}
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel=%q`,
			c.Path(), r.offset, p.Limit, r.name))
	}
	c.Set("Link", strings.Join(links, ", "))
}
