package assets

// DefaultPreludeName is the built-in prelude used when none is configured.
const DefaultPreludeName = "default"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// DefaultPrelude returns the built-in default prelude.
func DefaultPrelude() string {
	content, err := defaultLoader.LoadPrelude(DefaultPreludeName)
	if err != nil {
		panic("assets: default prelude missing from build: " + err.Error())
	}
	return content
}
