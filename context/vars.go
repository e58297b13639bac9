package context

import "fmt"

// Vars represents template variables.
// Later entries shadow earlier ones.
type Vars []map[string]any

// Append appends v to vars.
func (vars Vars) Append(v map[string]any) Vars {
	if v == nil {
		return vars
	}
	return append(vars[:len(vars):len(vars)], v)
}

// Value returns the variable called name.
func (vars Vars) Value(name string) (any, bool) {
	for i := len(vars) - 1; i >= 0; i-- {
		if v, ok := vars[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup implements template.Data interface.
func (vars Vars) Lookup(name string) (string, bool) {
	v, ok := vars.Value(name)
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
