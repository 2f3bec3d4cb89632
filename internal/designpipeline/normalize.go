package designpipeline

import "golang.org/x/text/unicode/norm"

// normalizeText applies Unicode NFC normalization to an inbound scene
// description before caching or diffing, so two browsers that encode the
// same characters differently (e.g. composed vs. decomposed accents) don't
// register as a spurious diff.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}
