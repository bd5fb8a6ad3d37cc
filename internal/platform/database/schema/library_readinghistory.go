package schema

// LibraryReadingHistoryTable represents the 'library.readinghistory' table
type LibraryReadingHistoryTable struct {
	Table         string
	ID            string
	UserID        string
	MangaID       string
	ChapterID     string
	ChapterNumber string
	PageNumber    string
	LastReadAt    string
}

// LibraryReadingHistory is the schema definition for library.readinghistory
var LibraryReadingHistory = LibraryReadingHistoryTable{
	Table:         "library.readinghistory",
	ID:            "id",
	UserID:        "userid",
	MangaID:       "mangaid",
	ChapterID:     "chapterid",
	ChapterNumber: "chapternumber",
	PageNumber:    "pagenumber",
	LastReadAt:    "lastreadat",
}

func (t LibraryReadingHistoryTable) Columns() []string {
	return []string{t.ID, t.UserID, t.MangaID, t.ChapterID, t.ChapterNumber, t.PageNumber, t.LastReadAt}
}
