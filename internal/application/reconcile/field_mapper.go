package reconcile

import (
	"errors"
	"fmt"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/pathmap"
)

// ErrUnknownLocalField indicates a field map that names a local item field
// the mapper cannot read. A configuration error, fatal to the pass.
var ErrUnknownLocalField = errors.New("reconcile: field map names an unknown local field")

// FieldMapper projects configured (local field, remote path) pairs onto a
// remote product tree.
type FieldMapper struct{}

// Apply runs every mapping in configured order against the tree, mutating
// it in place. A path with zero matches is skipped silently on a new remote
// record (nested containers may not exist yet) and is a strict
// ErrMappingFieldNotFound on an established one. Values are written only
// when they differ; Apply reports the changed top-level keys and whether
// anything changed.
func (FieldMapper) Apply(item *catalog.Item, mappings []sync.FieldMapping, tree map[string]any, isNew bool) (changedKeys []string, dirty bool, err error) {
	seenKeys := make(map[string]struct{})

	for _, m := range mappings {
		value, err := localFieldValue(item, m.LocalField)
		if err != nil {
			return nil, false, err
		}

		path, err := pathmap.Parse(m.RemotePath)
		if err != nil {
			return nil, false, err
		}

		matches := path.Find(tree)
		if len(matches) == 0 {
			if isNew {
				continue
			}
			return nil, false, fmt.Errorf("%w: %s", sync.ErrMappingFieldNotFound, m.RemotePath)
		}

		target := matches[0]
		if valuesEqual(target.Value, value) {
			continue
		}
		target.Set(value)
		dirty = true

		if root := path.Root(); root != "" {
			if _, ok := seenKeys[root]; !ok {
				seenKeys[root] = struct{}{}
				changedKeys = append(changedKeys, root)
			}
		}
	}
	return changedKeys, dirty, nil
}

// localFieldValue reads a named local item field. The mappable field set is
// fixed; unknown names are refused rather than silently producing nil.
func localFieldValue(item *catalog.Item, field string) (any, error) {
	switch field {
	case "code", "item_code":
		return item.Code, nil
	case "name", "item_name":
		return item.Name, nil
	case "category":
		return item.Category, nil
	case "sub_category":
		return item.SubCategory, nil
	case "shipping_class":
		return item.ShippingClass, nil
	case "image_url":
		if len(item.ImageURLs) == 0 {
			return "", nil
		}
		return item.ImageURLs[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocalField, field)
	}
}

// localFieldAssign writes a remote value back onto a named local item
// field. Used only by the timestamp-wins pull branch. Returns false for
// fields that cannot be written locally.
func localFieldAssign(item *catalog.Item, field string, value any) bool {
	text, ok := value.(string)
	if !ok {
		return false
	}
	switch field {
	case "name", "item_name":
		item.Name = text
	case "category":
		item.Category = text
	case "sub_category":
		item.SubCategory = text
	case "shipping_class":
		item.ShippingClass = text
	default:
		return false
	}
	return true
}

// valuesEqual compares a tree value with a local value, tolerating the
// numeric type loosening JSON round-trips introduce.
func valuesEqual(a, b any) bool {
	if a == b {
		return true
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
