package schema

// SocialRatingTable represents the 'social.rating' table
type SocialRatingTable struct {
	Table     string
	ID        string
	UserID    string
	MangaID   string
	Score     string
	Comment   string
	CreatedAt string
	UpdatedAt string
}

// SocialRating is the schema definition for social.rating
var SocialRating = SocialRatingTable{
	Table:     "social.rating",
	ID:        "id",
	UserID:    "userid",
	MangaID:   "mangaid",
	Score:     "score",
	Comment:   "comment",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t SocialRatingTable) Columns() []string {
	return []string{t.ID, t.UserID, t.MangaID, t.Score, t.Comment, t.CreatedAt, t.UpdatedAt}
}
