package ast

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
)

// decodeMeta parses one metadata block's YAML into Meta, preserving
// key order.
func decodeMeta(data []byte) (Meta, error) {
	var ms yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &ms, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	m := make(Meta, 0, len(ms))
	for _, item := range ms {
		m = append(m, MetaEntry{
			Key:   fmt.Sprintf("%v", item.Key),
			Value: metaValueOf(item.Value),
		})
	}
	return m, nil
}

func metaValueOf(v any) MetaValue {
	switch x := v.(type) {
	case nil:
		return MetaString("")
	case bool:
		return MetaBool(x)
	case string:
		return MetaString(x)
	case int:
		return MetaString(strconv.Itoa(x))
	case int64:
		return MetaString(strconv.FormatInt(x, 10))
	case uint64:
		return MetaString(strconv.FormatUint(x, 10))
	case float64:
		return MetaString(strconv.FormatFloat(x, 'g', -1, 64))
	case yaml.MapSlice:
		mm := make(MetaMap, 0, len(x))
		for _, item := range x {
			mm = append(mm, MetaEntry{
				Key:   fmt.Sprintf("%v", item.Key),
				Value: metaValueOf(item.Value),
			})
		}
		return mm
	case []any:
		ml := make(MetaList, 0, len(x))
		for _, e := range x {
			ml = append(ml, metaValueOf(e))
		}
		return ml
	}
	return MetaString(fmt.Sprintf("%v", v))
}

// mergeMeta folds a later block's entries into m; the first block to
// set a key wins.
func mergeMeta(m Meta, add Meta) Meta {
	for _, e := range add {
		if m.Lookup(e.Key) == nil {
			m = append(m, e)
		}
	}
	return m
}
