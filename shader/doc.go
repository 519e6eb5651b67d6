// Package shader turns shader source providers into linked native
// programs, caching aggressively along the way.
//
// A Provider supplies vertex and fragment source plus named snippets.
// Before compilation the source is preprocessed: #pragma inject lines
// are spliced from provider or globally registered snippets, and
// variant values override matching #define lines. Each distinct
// (stage, provider, variant) compiles at most once while cached, and
// each distinct shader pair links at most once.
package shader
