// Package encode writes documents in the two interchange encodings.
//
// # Usage
//
//	// Write native format
//	err := encode.Encode(doc, os.Stdout)
//
//	// Write JSON
//	err := encode.Encode(doc, os.Stdout, encode.EncodeFormat(format.JSONFormat))
//
//	// Native with terminal colors
//	err := encode.Encode(doc, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// # Related Packages
//
//   - github.com/signadot/qmd-format/go-qmd/ast - document tree
//   - github.com/signadot/qmd-format/go-qmd/parse - parse source text
package encode
