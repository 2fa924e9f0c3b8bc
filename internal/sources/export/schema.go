package export

// File is the top-level structure of a bookmarks export file.
type File struct {
	Version   int              `yaml:"version,omitempty"`
	Bookmarks []BookmarkRecord `yaml:"bookmarks"`
}

// BookmarkRecord is one exported bookmark entry.
type BookmarkRecord struct {
	ID         string   `yaml:"id,omitempty"`
	URL        string   `yaml:"url"`
	Title      string   `yaml:"title,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Collection string   `yaml:"collection,omitempty"`
	SavedAt    string   `yaml:"saved_at,omitempty"`
}
