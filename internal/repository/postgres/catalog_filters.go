package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// buildItemFilterClause constructs SQL filter clauses for catalog queries
func buildItemFilterClause(filter *domain.ItemFilter, alias string, startIndex int) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex
	prefix := normalizeAlias(alias)

	if len(filter.SKUIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("%ssku_id = ANY($%d::text[])", prefix, idx))
		args = append(args, pq.Array(filter.SKUIDs))
		idx++
	}

	if len(filter.Categories) > 0 {
		clauses = append(clauses, fmt.Sprintf("%scategory = ANY($%d::text[])", prefix, idx))
		args = append(args, pq.Array(filter.Categories))
		idx++
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(clauses, " AND "), args
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}

// clampPage applies the shared pagination bounds.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// resultsOrderBy maps a caller-supplied sort field onto a result column.
// Anything outside the whitelist returns "" so the caller keeps its
// default order; direction is clamped to ASC/DESC.
func resultsOrderBy(sortBy, sortDir string) string {
	var col string
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "sku_id":
		col = "r.sku_id"
	case "eoq":
		col = "r.eoq"
	case "reorder_point":
		col = "r.reorder_point"
	case "safety_stock":
		col = "r.safety_stock"
	case "optimal_inventory":
		col = "r.optimal_inventory"
	case "annual_holding_cost":
		col = "r.annual_holding_cost"
	case "annual_ordering_cost":
		col = "r.annual_ordering_cost"
	case "total_annual_cost":
		col = "r.total_annual_cost"
	default:
		return ""
	}

	dir := strings.ToUpper(strings.TrimSpace(sortDir))
	if dir != "ASC" && dir != "DESC" {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, r.sku_id ASC", col, dir)
}
