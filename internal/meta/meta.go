// Where: internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep branding and output layout names in one place.
package meta

const (
	// Project Identity
	AppName = "canary"

	// File Layout
	ConfigFile = "canary.yaml"
	OutputDir  = "canary.out"
	AssetDir   = "assets"

	// Output naming
	ManifestFile   = "manifest.json"
	TemplateSuffix = ".template"
)
