package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape applies the projection to already decoded documents so that fields
// the store did not return are not rendered as zero values. items must
// marshal to a JSON array of objects whose keys match the stored field names;
// "_id" is rendered as "id".
func (q *Query) Shape(items interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if len(q.Projection) == 0 {
		return docs, nil
	}

	include := map[string]bool{}
	exclude := map[string]bool{}
	for _, e := range q.Projection {
		key := jsonKey(e.Key)
		if v, ok := e.Value.(int); ok && v == 0 {
			// the store already dropped nested exclusions
			if !strings.Contains(e.Key, ".") {
				exclude[key] = true
			}
			continue
		}
		include[key] = true
	}

	for _, doc := range docs {
		for k := range doc {
			switch {
			case exclude[k]:
				delete(doc, k)
			case len(include) > 0 && !include[k] && k != "id":
				delete(doc, k)
			}
		}
	}
	return docs, nil
}

func jsonKey(field string) string {
	if field == "_id" {
		return "id"
	}
	if i := strings.Index(field, "."); i > 0 {
		return field[:i]
	}
	return field
}
