package document

// Folder groups curated segments within a document.
type Folder struct {
	ID         string
	OwnerID    string
	DocumentID string
	Name       string
	CreatedAt  int64
	DeletedAt  *int64
}

// Deleted reports whether the folder carries a tombstone.
func (f *Folder) Deleted() bool {
	return f.DeletedAt != nil
}

// FolderItem places one segment inside a folder.
// (FolderID, SegmentID) is unique.
type FolderItem struct {
	ID        string
	FolderID  string
	SegmentID string
	CreatedAt int64
}
