package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
	"github.com/goliatone/go-modelsheet/pkg/store"
	"github.com/goliatone/go-modelsheet/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	selectIdx    []int
	inputConfigs []InputConfig
	infoMessages []string
	inputPos     int
	confirmPos   int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func editablePage(t *testing.T, property string) render.Page {
	t.Helper()
	m := testsupport.HRModel()
	employee := testsupport.Employee()
	prop := testsupport.EmployeeProperty(t, property)
	form := propertyform.BuildFormModel(m.Namespace, employee.Name, prop, propertyform.DraftFrom(prop))
	return render.Page{
		View: sheet.Select(metamodel.Selection{Namespace: &m, Declaration: employee, Property: prop}),
		Form: &form,
	}
}

func decodeDraft(t *testing.T, out []byte) propertyform.Draft {
	t.Helper()
	var draft propertyform.Draft
	if err := json.Unmarshal(out, &draft); err != nil {
		t.Fatalf("decode output %s: %v", out, err)
	}
	return draft
}

func TestRender_CollectsDraft(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"pay", "42.5"},
		confirm: []bool{true},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := propertyform.Draft{Name: "pay", DefaultValue: "42.5", IsArray: propertyform.Bool(true)}
	if diff := cmp.Diff(want, decodeDraft(t, out)); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if driver.inputConfigs[0].Default != "salary" || driver.inputConfigs[1].Default != "3.14" {
		t.Fatalf("expected prompts seeded from the property, got %+v", driver.inputConfigs)
	}
	if driver.inputConfigs[0].Validator == nil || driver.inputConfigs[0].Validator(" ") == nil {
		t.Fatal("expected the name prompt to reject blank input")
	}
	if !containsMessage(driver.infoMessages, "Class: concerto.metamodel@1.0.0.DoubleProperty") {
		t.Fatalf("expected class to be printed, got %v", driver.infoMessages)
	}
}

func TestRender_RepromptsRejectedFieldsOnly(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"pay", "lots", "7"},
		confirm: []bool{false},
	}
	r, _ := New(WithPromptDriver(driver))

	out, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := propertyform.Draft{Name: "pay", DefaultValue: "7", IsArray: propertyform.Bool(false)}
	if diff := cmp.Diff(want, decodeDraft(t, out)); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if len(driver.inputConfigs) != 3 || driver.inputConfigs[2].Message != "defaultValue" {
		t.Fatalf("expected only defaultValue to be prompted again, got %+v", driver.inputConfigs)
	}
	if !containsMessage(driver.infoMessages, "Default value must be a number") {
		t.Fatalf("expected the coercion error to be shown, got %v", driver.infoMessages)
	}
}

func TestRender_ReferenceSkipsDefault(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"boss"},
		confirm: []bool{false},
	}
	r, _ := New(WithPromptDriver(driver))

	out, err := r.Render(context.Background(), editablePage(t, "manager"), render.RenderOptions{
		Values: map[string]any{"defaultValue": "ignored"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(driver.inputConfigs) != 1 {
		t.Fatalf("expected a single text prompt, got %+v", driver.inputConfigs)
	}
	if strings.Contains(string(out), "defaultValue") {
		t.Fatalf("reference draft must not carry a default: %s", out)
	}
}

func TestRender_ReadOnlyView(t *testing.T) {
	driver := &stubDriver{}
	r, _ := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> "}))
	m := testsupport.HRModel()

	_, err := r.Render(context.Background(), render.Page{
		View: sheet.Select(metamodel.Selection{Namespace: &m, Declaration: testsupport.Employee()}),
	}, render.RenderOptions{})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "> concerto.metamodel@1.0.0.ParticipantDeclaration Employee") {
		t.Fatalf("unexpected summary %v", driver.infoMessages)
	}
	if !strings.Contains(driver.infoMessages[0], "manager org.acme.hr@1.0.0.Employee optional") {
		t.Fatalf("expected relationship line, got %q", driver.infoMessages[0])
	}
}

func TestRender_OutputFormats(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{OutputFormatFormURLEncoded, "defaultValue=3.14&isArray=false&name=salary"},
		{OutputFormatPrettyText, "name=salary\ndefaultValue=3.14\nisArray=false\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"salary", "3.14"}, confirm: []bool{false}}
			r, _ := New(WithPromptDriver(driver), WithOutputFormat(tt.format))
			out, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(out)); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_GivesUpAfterMaxRounds(t *testing.T) {
	driver := &stubDriver{inputs: []string{"pay", "x", "y"}, confirm: []bool{false}}
	r, _ := New(WithPromptDriver(driver), WithMaxRounds(2))

	_, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
	var fieldErrs propertyform.FieldErrors
	if !errors.As(err, &fieldErrs) || !fieldErrs.Has(propertyform.FieldDefaultValue) {
		t.Fatalf("expected defaultValue field error, got %v", err)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	driver := &stubDriver{inputs: []string{" pay ", ""}, confirm: []bool{false}}
	r, _ := New(WithPromptDriver(driver), WithSubmitTransformer(func(d propertyform.Draft) (propertyform.Draft, error) {
		d.Name = strings.TrimSpace(d.Name)
		return d, nil
	}))

	out, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := decodeDraft(t, out).Name; got != "pay" {
		t.Fatalf("expected transformed name, got %q", got)
	}
}

func TestRender_AbortPropagates(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	_, err := r.Render(context.Background(), editablePage(t, "salary"), render.RenderOptions{})
	if err == nil {
		t.Fatal("expected driver error to propagate")
	}
}

func TestNavigate(t *testing.T) {
	m := testsupport.HRModel()
	other := metamodel.Model{Namespace: "org.acme.other@1.0.0"}
	reader := store.NewMemory(m, other)

	driver := &stubDriver{selectIdx: []int{0, 2, 3}}
	key, err := Navigate(context.Background(), driver, reader)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	want := store.SelectionKey{Namespace: m.Namespace, Declaration: "Employee", Property: "salary"}
	if diff := cmp.Diff(want, key); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	driver = &stubDriver{selectIdx: []int{-1, 0, 1, 0}}
	key, err = Navigate(context.Background(), driver, reader)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	want = store.SelectionKey{Namespace: m.Namespace, Declaration: "Address"}
	if diff := cmp.Diff(want, key); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	if _, err := Navigate(context.Background(), &stubDriver{}, store.NewMemory()); !errors.Is(err, ErrNothingToSelect) {
		t.Fatalf("expected ErrNothingToSelect, got %v", err)
	}
}

func containsMessage(messages []string, needle string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
