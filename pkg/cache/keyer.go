package cache

// Keyer builds cache keys for each cached artifact kind.
type Keyer interface {
	// ConversionKey identifies a converted graph plus its malformed log.
	ConversionKey(inputHash string, opts ConversionKeyOpts) string

	// ArtifactKey identifies a rendered view (DOT, SVG) of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ConversionKeyOpts are the inputs that change conversion output besides the
// document itself.
type ConversionKeyOpts struct {
	// Version is the converter format version. Bump it when output changes.
	Version int `json:"version"`
}

// ArtifactKeyOpts select a rendered view.
type ArtifactKeyOpts struct {
	Format   string   `json:"format"`
	Types    []string `json:"types,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ConversionKey returns "convert:<sha256>".
func (DefaultKeyer) ConversionKey(inputHash string, opts ConversionKeyOpts) string {
	return hashKey("convert", inputHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
