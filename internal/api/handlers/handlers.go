package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// respondError maps domain error kinds onto HTTP statuses: bad input
// is the caller's fault, domain violations are unprocessable, anything
// else is ours.
func respondError(c *gin.Context, err error, message string) {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigurationError
		domainErr     *domain.DomainError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &configErr):
		status = http.StatusBadRequest
	case errors.As(err, &domainErr):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// parseItemFilter reads the shared listing query params: pagination
// plus sku_ids and categories, each accepted as repeated params or a
// comma-separated value.
func parseItemFilter(c *gin.Context) *domain.ItemFilter {
	filter := &domain.ItemFilter{
		Page:     1,
		PageSize: 20,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && size > 0 {
		filter.PageSize = size
	}

	filter.SKUIDs = parseListParam(c, "sku_ids")
	filter.Categories = parseListParam(c, "categories")
	filter.SortBy = c.Query("sort_by")
	filter.SortDir = c.Query("sort_dir")

	return filter
}

// parseListParam flattens ?key=a&key=b and ?key=a,b into one list,
// trimming blanks.
func parseListParam(c *gin.Context, key string) []string {
	raw := c.QueryArray(key)
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query(key)); single != "" {
			raw = []string{single}
		}
	}

	var values []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
