package assets

// PreludeLoader defines the contract for loading a Typst prelude.
// Implementations may load from embedded assets, the filesystem, etc.
type PreludeLoader interface {
	// LoadPrelude loads a prelude by reference.
	// Returns ErrPreludeNotFound if the prelude doesn't exist.
	// Returns ErrInvalidAssetName if the reference is unusable.
	LoadPrelude(ref string) (string, error)
}
