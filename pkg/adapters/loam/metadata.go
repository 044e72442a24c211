package loam

// ScriptMetadata is the frontmatter of a script document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type ScriptMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`

	// Vars provides default variables for runs of the script. Caller variables win.
	Vars map[string]any `json:"vars" mapstructure:"vars"`

	// Strict asks hosts to fail the run on unresolved tags.
	Strict bool `json:"strict" mapstructure:"strict"`
}
