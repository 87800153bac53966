// Package query turns list request parameters into a MongoDB query.
//
// The builder works in four independent stages that are applied in a fixed
// order: filter, sort, field selection and pagination. Each stage is computed
// from the raw parameters only, so calling a stage twice yields the same
// result.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tropharbour-backend/internal/shared/apperror"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 100
	MaxLimit     int64 = 1000

	maxPage = math.MaxInt64 / MaxLimit
)

// Parameters consumed by the sort, fields and pagination stages.
var reservedParams = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// Comparison suffixes a client may use, e.g. price[gte]=500.
var operators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
	"eq":  "$eq",
}

// Fields that accept repeated values (matched with $in). For any other
// field the last value wins.
var multiValueFields = map[string]struct{}{
	"duration":        {},
	"ratingsQuantity": {},
	"ratingsAverage":  {},
	"rating":          {},
	"maxGroupSize":    {},
	"difficulty":      {},
	"price":           {},
}

// Fields hidden unless explicitly requested.
var internalFields = []string{"__v"}

var (
	paramKey  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)(?:\[([A-Za-z]+)\])?$`)
	fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// Query is the executable form of a list request.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Page       int64
	Skip       int64
	Limit      int64
}

// FindOptions converts the sort, projection and pagination parts into
// driver options.
func (q *Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

// Builder accumulates the stages applied to a base filter.
type Builder struct {
	base   bson.M
	params url.Values
	query  Query
	err    error
}

// NewBuilder starts a query over base (which may be nil) using params.
func NewBuilder(base bson.M, params url.Values) *Builder {
	if params == nil {
		params = url.Values{}
	}
	return &Builder{
		base:   base,
		params: params,
		query:  Query{Filter: copyM(base)},
	}
}

// Apply runs filter, sort, field selection and pagination in that order.
func Apply(base bson.M, params url.Values) (*Query, error) {
	return NewBuilder(base, params).
		Filter().
		Sort().
		LimitFields().
		Paginate().
		Build()
}

// Build returns the accumulated query or the first stage error.
func (b *Builder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	q := b.query
	return &q, nil
}

// Filter turns every non reserved parameter into a predicate. Only the
// allowlisted comparison suffixes become operators; anything else that
// could reach the store as an operator is dropped.
func (b *Builder) Filter() *Builder {
	keys := make([]string, 0, len(b.params))
	for k := range b.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := map[string]bson.M{}
	for _, key := range keys {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		m := paramKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		field, suffix := m[1], strings.ToLower(m[2])

		vals := b.params[key]
		if len(vals) == 0 {
			continue
		}

		op := "$eq"
		if suffix != "" {
			mapped, ok := operators[suffix]
			if !ok {
				continue
			}
			op = mapped
		}

		cond, ok := conds[field]
		if !ok {
			cond = bson.M{}
			conds[field] = cond
		}

		_, multi := multiValueFields[field]
		if op == "$eq" && multi && len(vals) > 1 {
			cond["$in"] = coerceAll(vals)
			continue
		}
		cond[op] = coerce(vals[len(vals)-1])
	}

	preds := bson.M{}
	for field, cond := range conds {
		if v, ok := cond["$eq"]; ok && len(cond) == 1 {
			preds[field] = v
			continue
		}
		preds[field] = cond
	}

	switch {
	case len(preds) == 0:
		b.query.Filter = copyM(b.base)
	case len(b.base) == 0:
		b.query.Filter = preds
	default:
		b.query.Filter = bson.M{"$and": bson.A{copyM(b.base), preds}}
	}
	return b
}

// Sort builds a stable ordering. A leading "-" marks a descending key and
// _id is always the final tie breaker.
func (b *Builder) Sort() *Builder {
	sortDoc := bson.D{}
	seen := map[string]bool{}

	for _, part := range splitList(last(b.params["sort"])) {
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		} else if strings.HasPrefix(part, "+") {
			part = part[1:]
		}
		if !fieldName.MatchString(part) || seen[part] {
			continue
		}
		seen[part] = true
		sortDoc = append(sortDoc, bson.E{Key: part, Value: dir})
	}

	if len(sortDoc) == 0 {
		sortDoc = bson.D{{Key: "createdAt", Value: -1}}
	}
	if !seen["_id"] {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})
	}

	b.query.Sort = sortDoc
	return b
}

// LimitFields selects the returned fields. Without a fields parameter the
// internal fields are excluded.
func (b *Builder) LimitFields() *Builder {
	var include, exclude []string
	for _, part := range splitList(last(b.params["fields"])) {
		if strings.HasPrefix(part, "-") {
			if name := part[1:]; fieldName.MatchString(name) {
				exclude = append(exclude, name)
			}
			continue
		}
		if fieldName.MatchString(part) {
			include = append(include, part)
		}
	}

	proj := bson.D{}
	if len(include) > 0 {
		for _, f := range dedupe(include) {
			proj = append(proj, bson.E{Key: f, Value: 1})
		}
		for _, f := range exclude {
			if f == "_id" {
				proj = append(proj, bson.E{Key: "_id", Value: 0})
			}
		}
	} else {
		for _, f := range dedupe(append(exclude, internalFields...)) {
			proj = append(proj, bson.E{Key: f, Value: 0})
		}
	}

	b.query.Projection = proj
	return b
}

// Paginate converts page and limit into skip and limit. Values that are
// not positive integers fail with InvalidArgument; a page past the end of
// the results is not an error.
func (b *Builder) Paginate() *Builder {
	page, err := positiveInt(b.params, "page", DefaultPage)
	if err != nil {
		b.err = err
		return b
	}
	limit, err := positiveInt(b.params, "limit", DefaultLimit)
	if err != nil {
		b.err = err
		return b
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > maxPage {
		page = maxPage
	}

	b.query.Page = page
	b.query.Limit = limit
	b.query.Skip = (page - 1) * limit
	return b
}

func positiveInt(params url.Values, key string, def int64) (int64, error) {
	raw := strings.TrimSpace(last(params[key]))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, apperror.InvalidArgument(fmt.Sprintf("Invalid %s: %s. It must be a positive integer", key, raw))
	}
	return n, nil
}

// coerce gives a raw parameter the most specific type it parses as.
func coerce(raw string) interface{} {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return raw
}

func coerceAll(vals []string) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, coerce(v))
	}
	return out
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func last(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func copyM(m bson.M) bson.M {
	out := bson.M{}
	for k, v := range m {
		out[k] = v
	}
	return out
}
