package rewrite

// CoverSpec describes what happens to the cover picture.
type CoverSpec struct {
	// Path names a replacement image. A path that does not exist is treated
	// as no replacement.
	Path string
	// PreserveExisting keeps embedded pictures when no replacement is given.
	// When false they are removed.
	PreserveExisting bool
}

// Request is one rewrite. Metadata is the full set of tags to write; with
// PreserveMetadata false every existing container tag is dropped first.
type Request struct {
	Input            string
	Output           string
	Cover            CoverSpec
	Metadata         map[string]string
	PreserveMetadata bool
}

// unchanged reports whether the request asks for no modification at all.
func (r Request) unchanged(hasCover bool) bool {
	return !hasCover && r.Cover.PreserveExisting && len(r.Metadata) == 0 && r.PreserveMetadata
}
