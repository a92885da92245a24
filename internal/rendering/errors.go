// Package rendering turns CV snapshots into HTML layouts using a registry of
// interchangeable templates.
package rendering

import "fmt"

// TemplateError reports a layout file that failed to parse. It points at a
// broken embedded layout, never at the CV data.
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("layout %q does not parse: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError reports a layout that parsed but failed while executing the
// named block against a snapshot.
type RenderError struct {
	Template string
	Block    string
	Cause    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s of layout %q: %v", e.Block, e.Template, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
