package repositories

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// EntityCriteria - условия выборки, уже провалидированные сервисом
type EntityCriteria struct {
	Status   string
	Search   string
	Filters  map[string]string
	DateFrom *time.Time
	DateTo   *time.Time
	Offset   int
	Limit    int
}

func applyCriteria(query *gorm.DB, spec kindSpec, c EntityCriteria) (*gorm.DB, error) {
	if c.Status != "" {
		query = query.Where(spec.table+".status = ?", c.Status)
	}

	keys := make([]string, 0, len(c.Filters))
	for key := range c.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		column, ok := spec.filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, key)
		}
		query = query.Where(column+" = ?", c.Filters[key])
	}

	if c.DateFrom != nil {
		query = query.Where(spec.table+".created_at >= ?", *c.DateFrom)
	}
	if c.DateTo != nil {
		query = query.Where(spec.table+".created_at <= ?", *c.DateTo)
	}

	if term := strings.TrimSpace(c.Search); term != "" && len(spec.searchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, 0, len(spec.searchColumns))
		args := make([]interface{}, 0, len(spec.searchColumns))
		for _, column := range spec.searchColumns {
			conds = append(conds, "LOWER("+column+") LIKE ? ESCAPE '!'")
			args = append(args, pattern)
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	return query, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
