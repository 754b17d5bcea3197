// Package store owns the canonical model tree and the current selection. The
// property sheet reads the selection through Reader and publishes edits
// through Updater; Memory is the in-process implementation shared by the HTTP
// editor and the CLI.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

var (
	ErrNamespaceNotFound   = errors.New("store: namespace not found")
	ErrDeclarationNotFound = errors.New("store: declaration not found")
	ErrPropertyNotFound    = errors.New("store: property not found")
	ErrDuplicateNamespace  = errors.New("store: duplicate namespace")
	ErrDuplicateProperty   = errors.New("store: duplicate property name")
	ErrVariantMismatch     = errors.New("store: property variant cannot change")
	ErrInvalidProperty     = errors.New("store: invalid property")
	ErrStaleRevision       = errors.New("store: stale revision")
)

// Reader exposes the selection and the model tree.
type Reader interface {
	Selection() metamodel.Selection
	Model(namespace string) (metamodel.Model, bool)
	Models() []metamodel.Model
}

// Updater is the single mutation entry point used by the property form.
// Entities are addressed by the names they had before the edit.
type Updater interface {
	UpdateProperty(ctx context.Context, namespace, declaration, property string, updated metamodel.Property) error
}

// Store combines read and write access.
type Store interface {
	Reader
	Updater
}

// SelectionKey addresses a selection by name. Empty members are unselected.
type SelectionKey struct {
	Namespace   string `json:"namespace,omitempty"`
	Declaration string `json:"declaration,omitempty"`
	Property    string `json:"property,omitempty"`
}

// ChangeKind classifies store notifications.
type ChangeKind string

const (
	ChangeLoaded          ChangeKind = "loaded"
	ChangePropertyUpdated ChangeKind = "property-updated"
	ChangeSelection       ChangeKind = "selection"
)

// Change describes a committed mutation.
type Change struct {
	Kind        ChangeKind
	Namespace   string
	Declaration string
	Property    string
	Updated     metamodel.Property
	Revision    string
}

// Listener receives changes after the store lock has been released.
type Listener func(Change)
