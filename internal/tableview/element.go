package tableview

import "errors"

// ErrNoSuchElement is returned (possibly wrapped) by an Element when a
// structural lookup matches nothing.
var ErrNoSuchElement = errors.New("no such element")

// Element is a node of a rendered document. Implementations are supplied by
// the caller and own the lifecycle of the underlying document.
type Element interface {
	// Text returns the rendered text of the element.
	Text() string

	// FindAll returns every descendant with the given tag name, in document
	// order. No match is an empty slice, not an error.
	FindAll(tag string) ([]Element, error)

	// Find returns the first descendant with the given tag name.
	// Returns an error wrapping ErrNoSuchElement if there is none.
	Find(tag string) (Element, error)

	// FindPath resolves a relative path with 1-based positions,
	// e.g. "td[2]" or "tr[3]/td[1]".
	// Returns an error wrapping ErrNoSuchElement if there is none.
	FindPath(path string) (Element, error)
}
