// Package markup implements the tag markup engine used by redactor documents.
//
// Documents are free-form text containing inline tags of the form
// [[name:payload]] and block tags of the form [[name]] ... [[/name]]. The
// package provides:
//   - ScanTags: a tokenizer that locates every [[...]] span with byte offsets
//   - LintTags: a stack-based validator producing ordered diagnostics
//   - ApplyInlineTag / InsertBlockTag: selection-aware text transforms
//   - NormalizeOnSave: an idempotent cleanup pass run before persisting
//
// Every function is pure and synchronous. Callers own the text buffer and the
// selection; each call returns a fresh value and never mutates its input.
package markup

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TagKind identifies a known tag name.
type TagKind int

const (
	KindUnknown TagKind = iota

	// Inline kinds
	KindNota
	KindCita
	KindDorado
	KindGuinda
	KindMath
	KindFigura
	KindTabla
	KindEcuacion

	// Block kinds
	KindCaja
	KindAlerta
	KindInfo
	KindDestacado
)

var kindNames = map[TagKind]string{
	KindNota:      "nota",
	KindCita:      "cita",
	KindDorado:    "dorado",
	KindGuinda:    "guinda",
	KindMath:      "math",
	KindFigura:    "figura",
	KindTabla:     "tabla",
	KindEcuacion:  "ecuacion",
	KindCaja:      "caja",
	KindAlerta:    "alerta",
	KindInfo:      "info",
	KindDestacado: "destacado",
}

var kindsByName = func() map[string]TagKind {
	m := make(map[string]TagKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the canonical tag name, or "unknown".
func (k TagKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsInline reports whether k is an atomic, argument-bearing tag.
func (k TagKind) IsInline() bool {
	return k >= KindNota && k <= KindEcuacion
}

// IsBlock reports whether k is a structural tag that pairs with a closer.
func (k TagKind) IsBlock() bool {
	return k >= KindCaja && k <= KindDestacado
}

// IsReference reports whether k takes an identifier rather than free text.
func (k TagKind) IsReference() bool {
	return k == KindCita || k == KindFigura || k == KindTabla
}

// LookupKind normalizes name and classifies it.
func LookupKind(name string) TagKind {
	return kindsByName[NormalizeName(name)]
}

// InlineKinds returns the inline kinds in declaration order.
func InlineKinds() []TagKind {
	return []TagKind{KindNota, KindCita, KindDorado, KindGuinda, KindMath, KindFigura, KindTabla, KindEcuacion}
}

// BlockKinds returns the block kinds in declaration order.
func BlockKinds() []TagKind {
	return []TagKind{KindCaja, KindAlerta, KindInfo, KindDestacado}
}

// NormalizeName trims, strips diacritics and lowercases a tag name. Every
// place that reads or writes a tag name goes through this function.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Transformers and casers carry state, so both are built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	return cases.Lower(language.Und).String(stripped)
}
