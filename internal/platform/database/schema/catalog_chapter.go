package schema

// CatalogChapterTable represents the 'catalog.chapter' table
type CatalogChapterTable struct {
	Table         string
	ID            string
	MangaID       string
	ChapterNumber string
	Title         string
	Slug          string
	Description   string
	ReleaseDate   string
	Views         string
	IsPublished   string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
}

// CatalogChapter is the schema definition for catalog.chapter
var CatalogChapter = CatalogChapterTable{
	Table:         "catalog.chapter",
	ID:            "id",
	MangaID:       "mangaid",
	ChapterNumber: "chapternumber",
	Title:         "title",
	Slug:          "slug",
	Description:   "description",
	ReleaseDate:   "releasedate",
	Views:         "views",
	IsPublished:   "ispublished",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
}

func (t CatalogChapterTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.ChapterNumber, t.Title, t.Slug, t.Description,
		t.ReleaseDate, t.Views, t.IsPublished, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

// CatalogChapterPageTable represents the 'catalog.chapterpage' table
type CatalogChapterPageTable struct {
	Table      string
	ChapterID  string
	PageNumber string
	ImageURL   string
}

// CatalogChapterPage is the schema definition for catalog.chapterpage
var CatalogChapterPage = CatalogChapterPageTable{
	Table:      "catalog.chapterpage",
	ChapterID:  "chapterid",
	PageNumber: "pagenumber",
	ImageURL:   "imageurl",
}
