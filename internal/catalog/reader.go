package catalog

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	// MaxListResults caps every List call.
	MaxListResults = 100

	CategoryAll       = "all"
	CategoryFavorites = "favorites"
)

// Filter narrows a List call. UserID may be empty.
type Filter struct {
	Search   string
	Category string
	UserID   string
}

// Normalize trims every field and folds "" into CategoryAll.
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	f.UserID = strings.TrimSpace(f.UserID)
	if f.Category == "" {
		f.Category = CategoryAll
	}
	return f
}

// Reader answers catalog queries.
type Reader struct {
	DB *gorm.DB
}

// List returns memes matching f, newest first, each annotated with the
// caller's favorite state. The annotation comes from the same statement as
// the filter, so both reflect one snapshot.
func (r *Reader) List(ctx context.Context, f Filter) ([]AnnotatedMeme, error) {
	f = f.Normalize()

	out := make([]AnnotatedMeme, 0)
	if f.Category == CategoryFavorites && f.UserID == "" {
		return out, nil
	}

	q := r.DB.WithContext(ctx).
		Table("memes AS m").
		Select("m.*, (uf.id IS NOT NULL) AS is_favorite").
		Joins("LEFT JOIN user_favorites uf ON uf.meme_id = m.id AND uf.user_id = ?", f.UserID)

	switch f.Category {
	case CategoryAll:
	case CategoryFavorites:
		q = q.Where("uf.id IS NOT NULL")
	default:
		q = q.Where("m.category = ?", f.Category)
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		q = q.Where(`(m.title ILIKE @p OR m.description ILIKE @p OR EXISTS (
			SELECT 1 FROM unnest(m.tags) AS tag WHERE tag ILIKE @p
		))`, map[string]any{"p": pattern})
	}

	if err := q.Order("m.created_at DESC").Order("m.id DESC").
		Limit(MaxListResults).
		Scan(&out).Error; err != nil {
		return nil, wrapStorage("list memes", err)
	}
	for i := range out {
		if out[i].Tags == nil {
			out[i].Tags = pq.StringArray{}
		}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using the default
// backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
