package apiclient

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query maps parameter names to scalar values.
type Query map[string]any

// Values encodes q, dropping nil values, nil pointers and empty strings.
func (q Query) Values() url.Values {
	values := url.Values{}
	for k, v := range q {
		s, ok := scalar(v)
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return values
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case *string:
		if x == nil {
			return "", false
		}
		return scalar(*x)
	case bool:
		return strconv.FormatBool(x), true
	case *bool:
		if x == nil {
			return "", false
		}
		return strconv.FormatBool(*x), true
	case int:
		return strconv.Itoa(x), true
	case *int:
		if x == nil {
			return "", false
		}
		return strconv.Itoa(*x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case fmt.Stringer:
		return scalar(x.String())
	default:
		return scalar(fmt.Sprint(x))
	}
}

// PageQuery returns the pagination parameters shared by every list endpoint.
func PageQuery(limit, offset int) Query {
	return Query{"limit": limit, "offset": offset}
}

// Merge returns a new Query holding q's entries overlaid with other's.
func (q Query) Merge(other Query) Query {
	merged := make(Query, len(q)+len(other))
	for k, v := range q {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
