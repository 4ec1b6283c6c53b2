package errors

import "github.com/conneroisu/redactor/internal/markup"

var suggestions = map[string][]string{
	markup.CodeUnclosedMarker: {
		"Close the tag with ]] or remove the stray [[",
	},
	markup.CodeInvalidCloser: {
		"Only caja, alerta, info and destacado take a closing tag",
		"Inline tags such as [[cita:key]] are self-contained",
	},
	markup.CodeOrphanCloser: {
		"Add the matching opening tag or delete the closer",
	},
	markup.CodeMismatchedCloser: {
		"Close blocks in reverse order of opening",
		"Check for a typo in the closer name",
	},
	markup.CodeUnclosedBlock: {
		"Add the closing tag after the block body",
	},
	markup.CodeUnknownTag: {
		"Known inline tags: nota, cita, dorado, guinda, math, figura, tabla, ecuacion",
		"Known block tags: caja, alerta, info, destacado",
	},
	markup.CodeMissingTitle: {
		"Add a title after a colon, e.g. [[alerta:Important]]",
	},
	markup.CodeMissingArgument: {
		"Inline tags take their content after a colon, e.g. [[nota:text]]",
	},
	markup.CodeNestedPayload: {
		"Move the inner tag outside the inline payload",
	},
	markup.CodeEmptyReference: {
		"Write the id after the colon, e.g. [[cita:smith2020]]",
	},
	markup.CodePaddedReference: {
		"Remove the spaces around the id",
	},
	markup.CodeUnknownReference: {
		"Check the id for typos",
		"Add the id to the catalog file if the target is new",
	},
	markup.CodeEmptyMath: {
		"Write the expression after the colon or remove the tag",
	},
	markup.CodeMultilineMath: {
		"Use [[ecuacion:...]] for expressions that span lines",
	},
	markup.CodeEmptyEquation: {
		"Write the equation after the colon or remove the tag",
	},
}

// Suggest returns fix hints for an issue code, or nil when none exist.
func Suggest(code string) []string {
	return suggestions[code]
}
