// Package pipeline assembles a book tree into the body of a Typst document.
//
// The Assembler flattens the tree in document order, assigns every chapter a
// unique label, converts chapter bodies concurrently through the typst
// package and joins the results in their original order:
//   - parts become a weak page break and a #bookpart() call
//   - numbered chapters become native headings at their nesting depth
//   - unnumbered chapters become #unum_chap() calls
//   - separators become page breaks
//
// The prelude and outline are added by the root mdtypst package; this
// package only produces the body.
package pipeline
