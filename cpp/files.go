package cpp

// FileRegistry assigns stable integer identities to source paths so
// tokens only carry a small FileID instead of a path string.
// Registration is append only and idempotent.
type FileRegistry struct {
	ids   map[string]FileID
	paths []string
}

func NewFileRegistry() *FileRegistry {
	return &FileRegistry{
		ids: make(map[string]FileID),
	}
}

// Intern returns the FileID for path, registering it on first use.
func (fr *FileRegistry) Intern(path string) FileID {
	if id, ok := fr.ids[path]; ok {
		return id
	}
	id := FileID(len(fr.paths))
	fr.paths = append(fr.paths, path)
	fr.ids[path] = id
	return id
}

// Path maps an id back to the registered path for diagnostics.
func (fr *FileRegistry) Path(id FileID) string {
	if int(id) < 0 || int(id) >= len(fr.paths) {
		return "<unknown file>"
	}
	return fr.paths[id]
}

func (fr *FileRegistry) Len() int {
	return len(fr.paths)
}
