// Package assets loads Typst preludes: the definitions and show rules that
// precede the generated document body.
//
// # Loader Architecture
//
//	PreludeLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in preludes compiled in with go:embed
//	    ├── FilesystemLoader  - prelude files resolved against the book root
//	    └── PreludeResolver   - dispatches "builtin:" references to the
//	                            embedded loader, everything else to disk
//
// # References
//
// A prelude reference is either "builtin:{name}" (see BuiltinNames) or a file
// path. Relative paths are joined to the book root, so "theme/prelude.typ"
// and "../shared/prelude.typ" both work; absolute paths are read as is.
//
// Built-in names are validated like file names before the embedded
// filesystem is opened.
package assets
