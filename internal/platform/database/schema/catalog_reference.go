package schema

// CatalogReferenceTable represents one of the named reference tables
// ('catalog.category', 'catalog.tag', 'catalog.author', 'catalog.artist').
type CatalogReferenceTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	CreatedAt string
}

func newReferenceTable(name string) CatalogReferenceTable {
	return CatalogReferenceTable{
		Table:     name,
		ID:        "id",
		Name:      "name",
		Slug:      "slug",
		CreatedAt: "createdat",
	}
}

var (
	// CatalogCategory is the schema definition for catalog.category
	CatalogCategory = newReferenceTable("catalog.category")
	// CatalogTag is the schema definition for catalog.tag
	CatalogTag = newReferenceTable("catalog.tag")
	// CatalogAuthor is the schema definition for catalog.author
	CatalogAuthor = newReferenceTable("catalog.author")
	// CatalogArtist is the schema definition for catalog.artist
	CatalogArtist = newReferenceTable("catalog.artist")
)

// CatalogMangaCategoryTable represents the 'catalog.mangacategory' junction table
type CatalogMangaCategoryTable struct {
	Table      string
	MangaID    string
	CategoryID string
}

// CatalogMangaCategory is the schema definition for catalog.mangacategory
var CatalogMangaCategory = CatalogMangaCategoryTable{
	Table:      "catalog.mangacategory",
	MangaID:    "mangaid",
	CategoryID: "categoryid",
}

// CatalogMangaTagTable represents the 'catalog.mangatag' junction table
type CatalogMangaTagTable struct {
	Table   string
	MangaID string
	TagID   string
}

// CatalogMangaTag is the schema definition for catalog.mangatag
var CatalogMangaTag = CatalogMangaTagTable{
	Table:   "catalog.mangatag",
	MangaID: "mangaid",
	TagID:   "tagid",
}
