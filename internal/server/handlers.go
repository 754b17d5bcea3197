package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/openapi"
	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"revision": s.store.Revision(),
	})
}

// handleSheet renders the sheet for the current selection.
// GET /?theme=&variant=
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	s.renderSheet(w, r, http.StatusOK, orchestrator.Request{})
}

func (s *Server) renderSheet(w http.ResponseWriter, r *http.Request, status int, req orchestrator.Request) {
	query := r.URL.Query()
	req.ThemeName = query.Get("theme")
	req.ThemeVariant = query.Get("variant")
	req.RenderOptions.HiddenFields = render.MergeHiddenFields(req.RenderOptions.HiddenFields, render.RevisionField(s.store.Revision()))
	if req.RenderOptions.Locale == "" {
		req.RenderOptions.Locale = r.Header.Get("Accept-Language")
	}

	result, err := s.gen.Render(r.Context(), req)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeRaw(w, status, result.ContentType, result.Body)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.SelectionKey())
}

// handleSelect moves the selection. Form posts come from the sheet's
// navigation and are redirected back to it; JSON callers get the new key.
// POST /selection
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var key store.SelectionKey
	if isJSONRequest(r) {
		if err := decodeJSON(r, &key); err != nil {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
		key = store.SelectionKey{
			Namespace:   r.PostForm.Get("namespace"),
			Declaration: r.PostForm.Get("declaration"),
			Property:    r.PostForm.Get("property"),
		}
	}

	if err := s.store.Select(key); err != nil {
		s.writeStoreError(w, err)
		return
	}
	if isJSONRequest(r) || wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, s.store.SelectionKey())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DELETE /selection
func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// submission is the JSON body of a property edit. The revision is optional.
type submission struct {
	propertyform.Draft
	Revision string `json:"_revision,omitempty"`
}

// handleSubmit applies a property draft. A supplied revision is checked by the
// store in the same step as the write. The selection moves to the edited
// property only once the update has landed.
// POST /namespaces/{namespace}/declarations/{declaration}/properties/{property}
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	key := store.SelectionKey{
		Namespace:   pathParam(r, "namespace"),
		Declaration: pathParam(r, "declaration"),
		Property:    pathParam(r, "property"),
	}
	asJSON := isJSONRequest(r) || wantsJSON(r)

	var body submission
	if isJSONRequest(r) {
		if err := decodeJSON(r, &body); err != nil {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		if body.Revision == "" {
			body.Revision = strings.Trim(r.Header.Get("If-Match"), `"`)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
		body.Draft = propertyform.DecodeValues(r.PostForm)
		body.Revision = r.PostForm.Get(render.RevisionFieldName)
	}

	m, ok := s.store.Model(key.Namespace)
	if !ok {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "namespace not found: "+key.Namespace)
		return
	}
	decl, _, ok := m.Declaration(key.Declaration)
	if !ok {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "declaration not found: "+key.Declaration)
		return
	}
	concept, ok := decl.(metamodel.ConceptDeclaration)
	if !ok {
		s.writeError(w, http.StatusBadRequest, CodeNotEditable, key.Declaration+" is not a concept")
		return
	}
	prop, _, ok := metamodel.FindProperty(concept, key.Property)
	if !ok {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "property not found: "+key.Property)
		return
	}

	snapshot := metamodel.Selection{Namespace: &m, Declaration: concept, Property: prop}
	form := propertyform.New(s.store.AtRevision(body.Revision), key.Namespace, concept, prop)
	form.SetDraft(body.Draft)
	merged, err := form.Submit(r.Context())
	if err != nil {
		s.rejectSubmission(w, r, asJSON, snapshot, body.Draft, err)
		return
	}

	edited := key
	edited.Property = metamodel.PropertyName(merged)
	if err := s.store.Select(edited); err != nil {
		// The property was renamed or removed again since the update landed.
		s.logger.Warn("select edited property", zap.Error(err))
	}

	s.logger.Info("property updated",
		zap.String("namespace", key.Namespace),
		zap.String("declaration", key.Declaration),
		zap.String("property", key.Property),
		zap.String("name", edited.Property),
		zap.String("revision", s.store.Revision()),
	)

	if asJSON {
		encoded, err := metamodel.MarshalProperty(merged)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, json.RawMessage(encoded))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) rejectSubmission(w http.ResponseWriter, r *http.Request, asJSON bool, sel metamodel.Selection, draft propertyform.Draft, err error) {
	if errors.Is(err, store.ErrStaleRevision) {
		if asJSON {
			s.writeError(w, http.StatusConflict, CodeStale, render.MessageStaleRevision)
			return
		}
		s.renderRejected(w, r, http.StatusConflict, sel, draft, render.ErrorMapping{Form: []string{render.MessageStaleRevision}})
		return
	}

	var fieldErrs propertyform.FieldErrors
	if errors.As(err, &fieldErrs) {
		if asJSON {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Error:  "draft rejected",
				Code:   CodeValidation,
				Fields: fieldErrs,
			})
			return
		}
		s.renderRejected(w, r, http.StatusUnprocessableEntity, sel, draft, render.ErrorMapping{Fields: fieldErrs})
		return
	}

	status := storeStatus(err)
	if status == http.StatusInternalServerError {
		s.internalError(w, r, err)
		return
	}
	if asJSON {
		s.writeStoreError(w, err)
		return
	}
	s.renderRejected(w, r, status, sel, draft, render.MapStoreError(err))
}

// renderRejected shows the submitted property again with the user's draft and
// the messages explaining why it was not applied. The store selection is left
// where it was.
func (s *Server) renderRejected(w http.ResponseWriter, r *http.Request, status int, sel metamodel.Selection, draft propertyform.Draft, mapping render.ErrorMapping) {
	values := map[string]any{
		propertyform.FieldName:         draft.Name,
		propertyform.FieldDefaultValue: draft.DefaultValue,
	}
	if draft.IsArray != nil {
		values[propertyform.FieldIsArray] = *draft.IsArray
	}
	s.renderSheet(w, r, status, orchestrator.Request{
		Selection: &sel,
		Draft:     &draft,
		RenderOptions: render.RenderOptions{
			Values:     values,
			Errors:     mapping.Fields,
			FormErrors: mapping.Form,
		},
	})
}

type modelSummary struct {
	Namespace    string `json:"namespace"`
	Description  string `json:"description,omitempty"`
	Declarations int    `json:"declarations"`
}

// GET /api/models
func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	models := s.store.Models()
	out := make([]modelSummary, 0, len(models))
	for _, m := range models {
		out = append(out, modelSummary{
			Namespace:    m.Namespace,
			Description:  m.Description,
			Declarations: len(m.Declarations),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GET /api/models/{namespace}
func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	namespace := pathParam(r, "namespace")
	m, ok := s.store.Model(namespace)
	if !ok {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "namespace not found: "+namespace)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// GET /api/models/{namespace}/openapi?format=yaml
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	namespace := pathParam(r, "namespace")
	m, ok := s.store.Model(namespace)
	if !ok {
		s.writeError(w, http.StatusNotFound, CodeNotFound, "namespace not found: "+namespace)
		return
	}
	doc, err := openapi.Export(m)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		out, err := openapi.MarshalYAML(doc)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		s.writeRaw(w, http.StatusOK, "application/yaml", out)
		return
	}
	out, err := openapi.MarshalJSON(doc)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeRaw(w, http.StatusOK, "application/json", out)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	status := storeStatus(err)
	code := CodeInternal
	switch status {
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusConflict:
		code = CodeConflict
	case http.StatusBadRequest:
		code = CodeBadRequest
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	s.writeError(w, status, code, message)
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNamespaceNotFound),
		errors.Is(err, store.ErrDeclarationNotFound),
		errors.Is(err, store.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateProperty),
		errors.Is(err, store.ErrVariantMismatch),
		errors.Is(err, store.ErrStaleRevision):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidProperty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
