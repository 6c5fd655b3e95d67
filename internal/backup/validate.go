package backup

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/go-multierror"

	"notebk/internal/core"
)

// ErrShape is wrapped by every violation reported by ValidateData.
var ErrShape = errors.New("invalid document shape")

// validator collects every violation found in a decoded document.
type validator struct {
	errs *multierror.Error
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = multierror.Append(v.errs, fmt.Errorf("%w: %s: %s", ErrShape, path, fmt.Sprintf(format, args...)))
}

// ValidateData checks the inner shape of a decoded document: key formats,
// element shapes, field types and id uniqueness. Every violation is reported;
// a nil return means the document can replace the live one. A null mapping
// or list counts as empty, and a null amount counts as zero.
func ValidateData(data any) error {
	root, ok := data.(map[string]any)
	if !ok || root == nil {
		return multierror.Append(nil, fmt.Errorf("%w: data: must be an object", ErrShape))
	}

	v := &validator{}
	v.keyed(root, "expenses", core.CanonicalMonth, v.expenseList)
	v.keyed(root, "savings", core.CanonicalYear, v.savingsYear)
	v.keyed(root, "notes", core.CanonicalDay, v.text)
	v.keyed(root, "monthlyNotes", core.CanonicalMonth, v.text)
	v.keyed(root, "health", core.CanonicalYear, v.healthList)
	v.keyed(root, "customTables", core.CanonicalYear, v.tableList)
	return v.errs.ErrorOrNil()
}

// Problems flattens an error returned by ValidateData into messages.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		out = append(out, e.Error())
	}
	return out
}

// keyed walks one top-level mapping in key order so the report is stable.
func (v *validator) keyed(root map[string]any, name string, canon func(string) (string, error), elem func(path string, val any)) {
	raw, present := root[name]
	if !present || raw == nil {
		return
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.fail(name, "must be an object")
		return
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		path := fmt.Sprintf("%s[%q]", name, k)
		if c, err := canon(k); err != nil || c != k {
			v.fail(path, "key is not canonical")
			continue
		}
		elem(path, m[k])
	}
}

func (v *validator) text(path string, val any) {
	if _, ok := val.(string); !ok {
		v.fail(path, "must be a string")
	}
}

func (v *validator) savingsYear(path string, val any) {
	if val == nil {
		return
	}
	months, ok := val.(map[string]any)
	if !ok {
		v.fail(path, "must be an object")
		return
	}
	for _, name := range slices.Sorted(maps.Keys(months)) {
		p := fmt.Sprintf("%s[%q]", path, name)
		if !core.IsMonthName(name) {
			v.fail(p, "unknown month name")
			continue
		}
		v.amount(p, months[name])
	}
}

func (v *validator) expenseList(path string, val any) {
	v.list(path, val, func(p string, obj map[string]any) {
		v.optionalString(p, obj, "date")
		v.optionalString(p, obj, "concept")
		v.amount(p+".income", obj["income"])
		v.amount(p+".expense", obj["expense"])
	})
}

func (v *validator) healthList(path string, val any) {
	v.list(path, val, func(p string, obj map[string]any) {
		v.optionalString(p, obj, "title")
		if c, present := obj["completed"]; present {
			if _, ok := c.(bool); !ok {
				v.fail(p+".completed", "must be a boolean")
			}
		}
	})
}

func (v *validator) tableList(path string, val any) {
	v.list(path, val, func(p string, obj map[string]any) {
		for _, f := range []string{"title", "col1Title", "col2Title", "color", "icon"} {
			v.optionalString(p, obj, f)
		}
		v.list(p+".rows", obj["rows"], func(rp string, row map[string]any) {
			v.optionalString(rp, row, "val1")
			v.optionalString(rp, row, "val2")
		})
	})
}

// list checks an ordered sequence of objects carrying unique string ids.
func (v *validator) list(path string, val any, elem func(path string, obj map[string]any)) {
	if val == nil {
		return
	}
	items, ok := val.([]any)
	if !ok {
		v.fail(path, "must be a list")
		return
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := it.(map[string]any)
		if !ok || obj == nil {
			v.fail(p, "must be an object")
			continue
		}
		id, ok := obj["id"].(string)
		switch {
		case !ok || id == "":
			v.fail(p+".id", "must be a non-empty string")
		case seen[id]:
			v.fail(p+".id", "duplicate id %q", id)
		default:
			seen[id] = true
		}
		elem(p, obj)
	}
}

func (v *validator) optionalString(path string, obj map[string]any, field string) {
	val, present := obj[field]
	if !present {
		return
	}
	if _, ok := val.(string); !ok {
		v.fail(path+"."+field, "must be a string")
	}
}

func (v *validator) amount(path string, val any) {
	switch val.(type) {
	case nil, float64:
	default:
		v.fail(path, "must be a number")
	}
}
