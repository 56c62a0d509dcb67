package domain

// Artifact is a text report on disk, as seen by one pipeline run.
// Content is only meaningful when Exists is true.
type Artifact struct {
	Path    string
	Exists  bool
	Content string
}

// MissingArtifact returns the artifact value for a path that was not found.
func MissingArtifact(path string) Artifact {
	return Artifact{Path: path}
}

// FoundLabel renders the presence marker used in report input sections.
func (a Artifact) FoundLabel(optional bool) string {
	switch {
	case a.Exists:
		return "found"
	case optional:
		return "missing, optional"
	default:
		return "missing"
	}
}
