package catalog

import (
	"time"

	"github.com/lib/pq"
)

// Meme is a catalog entry. FavoritesCount is derived from user_favorites and
// is only moved by the Ledger.
type Meme struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:text;not null;uniqueIndex:uq_memes_title" json:"title"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	MediaURL    string `gorm:"type:text;not null;default:''" json:"mediaUrl"`
	MediaType   string `gorm:"type:text;not null;default:'image'" json:"mediaType"`
	Category    string `gorm:"type:text;index;not null;default:'new'" json:"category"`
	SourceURL   string `gorm:"type:text;not null;default:''" json:"sourceUrl"`

	Tags pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`

	ViewsCount     int64 `gorm:"not null;default:0;check:chk_memes_views_count,views_count >= 0" json:"viewsCount"`
	FavoritesCount int64 `gorm:"not null;default:0;check:chk_memes_favorites_count,favorites_count >= 0" json:"favoritesCount"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
}

// Favorite is the fact "user has favorited meme". At most one row per
// (user_id, meme_id).
type Favorite struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex:uq_user_favorites_user_meme,priority:1"`
	MemeID    uint64    `gorm:"not null;index;uniqueIndex:uq_user_favorites_user_meme,priority:2"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Favorite) TableName() string { return "user_favorites" }

// AnnotatedMeme is a Meme as seen by one caller.
type AnnotatedMeme struct {
	Meme       `gorm:"embedded"`
	IsFavorite bool `gorm:"column:is_favorite" json:"isFavorite"`
}

// MemeInput is what Writer.Add and Writer.Seed accept.
type MemeInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	MediaURL    string   `json:"media_url" validate:"omitempty,url"`
	MediaType   string   `json:"media_type" validate:"omitempty,max=32"`
	Category    string   `json:"category" validate:"omitempty,max=64,ne=all,ne=favorites"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=64"`
	SourceURL   string   `json:"source_url" validate:"omitempty,url"`
}

// ToggleResult reports the favorite state after a toggle.
type ToggleResult struct {
	IsFavorite bool `json:"isFavorite"`
}
