// Package dom wraps element lookup on a host document.
package dom

import "errors"

// ErrNoDocument is returned when no document is supplied.
var ErrNoDocument = errors.New("the document object does not exist")

// Element is a node of the host document.
type Element any

// Document is implemented by the host page.
type Document interface {
	QuerySelectorAll(selector string) []Element
	QuerySelector(selector string) Element
}

// Dom looks up elements in a document.
type Dom struct {
	document Document
}

// New creates a Dom over document.
func New(document Document) (*Dom, error) {
	if document == nil {
		return nil, ErrNoDocument
	}

	return &Dom{document: document}, nil
}

// Elements returns every element matching selector. The result is never nil.
func (d *Dom) Elements(selector string) []Element {
	elements := d.document.QuerySelectorAll(selector)
	if len(elements) == 0 {
		return []Element{}
	}

	out := make([]Element, len(elements))
	copy(out, elements)

	return out
}

// Element returns the first element matching selector, or nil.
func (d *Dom) Element(selector string) Element {
	return d.document.QuerySelector(selector)
}
