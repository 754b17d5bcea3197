// Package orchestrator wires the selection → view → form model → renderer
// pipeline behind a single Generate call. Defaults cover the common case
// (vanilla renderer, built-in widget registry); every stage can be replaced
// through options.
package orchestrator
