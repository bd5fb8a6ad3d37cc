package schema

// LibraryBookmarkTable represents the 'library.bookmark' table
type LibraryBookmarkTable struct {
	Table     string
	UserID    string
	MangaID   string
	CreatedAt string
}

// LibraryBookmark is the schema definition for library.bookmark
var LibraryBookmark = LibraryBookmarkTable{
	Table:     "library.bookmark",
	UserID:    "userid",
	MangaID:   "mangaid",
	CreatedAt: "createdat",
}
