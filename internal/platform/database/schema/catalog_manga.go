package schema

// CatalogMangaTable represents the 'catalog.manga' table
type CatalogMangaTable struct {
	Table         string
	ID            string
	Title         string
	Slug          string
	Description   string
	Status        string
	CoverImage    string
	Thumbnail     string
	AuthorID      string
	ArtistID      string
	ReleaseYear   string
	IsFeatured    string
	IsPublished   string
	Views         string
	AverageRating string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
}

// CatalogManga is the schema definition for catalog.manga
var CatalogManga = CatalogMangaTable{
	Table:         "catalog.manga",
	ID:            "id",
	Title:         "title",
	Slug:          "slug",
	Description:   "description",
	Status:        "status",
	CoverImage:    "coverimage",
	Thumbnail:     "thumbnail",
	AuthorID:      "authorid",
	ArtistID:      "artistid",
	ReleaseYear:   "releaseyear",
	IsFeatured:    "isfeatured",
	IsPublished:   "ispublished",
	Views:         "views",
	AverageRating: "averagerating",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
}

func (t CatalogMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.Status, t.CoverImage, t.Thumbnail,
		t.AuthorID, t.ArtistID, t.ReleaseYear, t.IsFeatured, t.IsPublished,
		t.Views, t.AverageRating, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
