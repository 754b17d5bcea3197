package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

// Memory is a thread-safe in-memory Store. Every mutation swaps in copies of
// the touched nodes, so snapshots returned earlier stay unchanged.
type Memory struct {
	mu        sync.RWMutex
	models    []metamodel.Model
	selection SelectionKey
	revision  string

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

var _ Store = (*Memory)(nil)

// NewMemory builds a store holding models. It panics on invalid input; use
// Load to handle errors.
func NewMemory(models ...metamodel.Model) *Memory {
	m := &Memory{revision: uuid.NewString()}
	if err := m.Load(models...); err != nil {
		panic(err)
	}
	return m
}

// Load replaces the model tree. The selection is kept when it still resolves
// and cleared otherwise.
func (m *Memory) Load(models ...metamodel.Model) error {
	seen := make(map[string]struct{}, len(models))
	next := make([]metamodel.Model, 0, len(models))
	for _, model := range models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("store: load: %w", err)
		}
		if _, dup := seen[model.Namespace]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNamespace, model.Namespace)
		}
		seen[model.Namespace] = struct{}{}
		next = append(next, model)
	}

	m.mu.Lock()
	m.models = next
	if _, err := m.resolveLocked(m.selection); err != nil {
		m.selection = SelectionKey{}
	}
	m.revision = uuid.NewString()
	change := Change{Kind: ChangeLoaded, Revision: m.revision}
	m.mu.Unlock()

	m.notify(change)
	return nil
}

// Models returns the loaded models in load order.
func (m *Memory) Models() []metamodel.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]metamodel.Model, len(m.models))
	copy(out, m.models)
	return out
}

// Model returns the model for namespace.
func (m *Memory) Model(namespace string) (metamodel.Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.modelIndexLocked(namespace)
	if idx < 0 {
		return metamodel.Model{}, false
	}
	return m.models[idx], true
}

// Revision identifies the current state of the model tree. It changes on
// every load and update.
func (m *Memory) Revision() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Selection resolves the current selection key into model snapshots.
func (m *Memory) Selection() metamodel.Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sel, _ := m.resolveLocked(m.selection)
	return sel
}

// SelectionKey returns the current selection by name.
func (m *Memory) SelectionKey() SelectionKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection
}

// Select points the sheet at an entity. A declaration requires a namespace
// and a property requires a declaration.
func (m *Memory) Select(key SelectionKey) error {
	key = SelectionKey{
		Namespace:   strings.TrimSpace(key.Namespace),
		Declaration: strings.TrimSpace(key.Declaration),
		Property:    strings.TrimSpace(key.Property),
	}

	m.mu.Lock()
	if _, err := m.resolveLocked(key); err != nil {
		m.mu.Unlock()
		return err
	}
	m.selection = key
	change := Change{
		Kind:        ChangeSelection,
		Namespace:   key.Namespace,
		Declaration: key.Declaration,
		Property:    key.Property,
		Revision:    m.revision,
	}
	m.mu.Unlock()

	m.notify(change)
	return nil
}

// ClearSelection unselects everything.
func (m *Memory) ClearSelection() {
	m.mu.Lock()
	m.selection = SelectionKey{}
	change := Change{Kind: ChangeSelection, Revision: m.revision}
	m.mu.Unlock()

	m.notify(change)
}

// UpdateProperty replaces the property addressed by (namespace, declaration,
// property) with updated. The variant must not change and a rename must not
// collide with a sibling. A selection pointing at the property follows it.
func (m *Memory) UpdateProperty(ctx context.Context, namespace, declaration, property string, updated metamodel.Property) error {
	return m.update(ctx, "", namespace, declaration, property, updated)
}

// AtRevision returns an Updater whose updates only apply while the store is
// still at revision. The check and the write happen under one lock, so of two
// edits made against the same revision only the first lands; the other fails
// with ErrStaleRevision. An empty revision is unconditional.
func (m *Memory) AtRevision(revision string) Updater {
	return revisionUpdater{store: m, revision: revision}
}

type revisionUpdater struct {
	store    *Memory
	revision string
}

func (u revisionUpdater) UpdateProperty(ctx context.Context, namespace, declaration, property string, updated metamodel.Property) error {
	return u.store.update(ctx, u.revision, namespace, declaration, property, updated)
}

func (m *Memory) update(ctx context.Context, revision, namespace, declaration, property string, updated metamodel.Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("%w: property is nil", ErrInvalidProperty)
	}
	newName := metamodel.PropertyName(updated)
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProperty)
	}

	m.mu.Lock()
	if revision != "" && revision != m.revision {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStaleRevision, revision)
	}
	modelIdx := m.modelIndexLocked(namespace)
	if modelIdx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNamespaceNotFound, namespace)
	}
	model := m.models[modelIdx]
	decl, declIdx, ok := model.Declaration(declaration)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q in %q", ErrDeclarationNotFound, declaration, namespace)
	}
	current, propIdx, ok := metamodel.FindProperty(decl, property)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q on %q", ErrPropertyNotFound, property, declaration)
	}
	if current.Kind() != updated.Kind() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s to %s", ErrVariantMismatch, current.Kind(), updated.Kind())
	}
	if newName != property {
		if _, _, clash := metamodel.FindProperty(decl, newName); clash {
			m.mu.Unlock()
			return fmt.Errorf("%w: %q on %q", ErrDuplicateProperty, newName, declaration)
		}
	}

	decl = metamodel.ReplaceProperty(decl, propIdx, updated)
	models := make([]metamodel.Model, len(m.models))
	copy(models, m.models)
	models[modelIdx] = model.WithDeclaration(declIdx, decl)
	m.models = models

	sel := m.selection
	if sel.Namespace == namespace && sel.Declaration == declaration && sel.Property == property {
		m.selection.Property = newName
	}
	m.revision = uuid.NewString()
	change := Change{
		Kind:        ChangePropertyUpdated,
		Namespace:   namespace,
		Declaration: declaration,
		Property:    property,
		Updated:     updated,
		Revision:    m.revision,
	}
	m.mu.Unlock()

	m.notify(change)
	return nil
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (m *Memory) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	if m.listeners == nil {
		m.listeners = make(map[int]Listener)
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Memory) notify(change Change) {
	m.listenerMu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}

func (m *Memory) modelIndexLocked(namespace string) int {
	for idx, model := range m.models {
		if model.Namespace == namespace {
			return idx
		}
	}
	return -1
}

func (m *Memory) resolveLocked(key SelectionKey) (metamodel.Selection, error) {
	var sel metamodel.Selection
	if key.Namespace == "" {
		if key.Declaration != "" || key.Property != "" {
			return sel, fmt.Errorf("%w: a namespace is required", ErrNamespaceNotFound)
		}
		return sel, nil
	}

	idx := m.modelIndexLocked(key.Namespace)
	if idx < 0 {
		return sel, fmt.Errorf("%w: %q", ErrNamespaceNotFound, key.Namespace)
	}
	model := m.models[idx]
	sel.Namespace = &model

	if key.Declaration == "" {
		if key.Property != "" {
			return metamodel.Selection{}, fmt.Errorf("%w: a declaration is required", ErrDeclarationNotFound)
		}
		return sel, nil
	}
	decl, _, ok := model.Declaration(key.Declaration)
	if !ok {
		return metamodel.Selection{}, fmt.Errorf("%w: %q in %q", ErrDeclarationNotFound, key.Declaration, key.Namespace)
	}
	sel.Declaration = decl

	if key.Property == "" {
		return sel, nil
	}
	prop, _, ok := metamodel.FindProperty(decl, key.Property)
	if !ok {
		return metamodel.Selection{}, fmt.Errorf("%w: %q on %q", ErrPropertyNotFound, key.Property, key.Declaration)
	}
	sel.Property = prop
	return sel, nil
}
