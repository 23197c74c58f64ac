package catalog

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/shopspring/decimal"
	"net/url"
	"strconv"
	"strings"
)

type ProductFilter struct {
	CategoryID *int64
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Status     ProductStatus
}

// ParseProductFilter reads listing filters from a query string. Status defaults to active.
func ParseProductFilter(q url.Values) (ProductFilter, error) {
	f := ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: StatusActive,
	}
	if v := strings.TrimSpace(q.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, apperr.Invalid("Invalid category_id")
		}
		f.CategoryID = &id
	}
	var err error
	if f.MinPrice, err = parsePrice(q.Get("min_price"), "Invalid min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("max_price"), "Invalid max_price"); err != nil {
		return f, err
	}
	if v := q.Get("status"); v != "" {
		st, ok := ParseStatus(v)
		if !ok {
			return f, apperr.Invalid("Invalid status")
		}
		f.Status = st
	}
	return f, nil
}

func parsePrice(v, msg string) (*decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperr.Invalid(msg)
	}
	return &d, nil
}

// CacheParts is the normalized form of the filter used to build cache keys.
func (f ProductFilter) CacheParts() []string {
	parts := []string{"status=" + string(f.Status), "search=" + strings.ToLower(f.Search)}
	if f.CategoryID != nil {
		parts = append(parts, "category="+strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.MinPrice != nil {
		parts = append(parts, "min="+f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		parts = append(parts, "max="+f.MaxPrice.String())
	}
	return parts
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
