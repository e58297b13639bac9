package context

import "github.com/kycflow/kycflow/template"

// ExecuteTemplate resolves the placeholders of v with the variables of c.
func (c *Context) ExecuteTemplate(v any) (any, error) {
	return template.Execute(v, c.Vars())
}

// ExecuteString resolves the placeholders of s with the variables of c.
func (c *Context) ExecuteString(s string) (string, error) {
	return template.ExecuteString(s, c.Vars())
}
