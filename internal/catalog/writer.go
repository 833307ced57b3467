package catalog

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultMediaType = "image"
	defaultCategory  = "new"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// SeedObserver is told how many rows a seed run inserted.
type SeedObserver interface {
	SeedInserted(n int)
}

// Writer inserts memes.
type Writer struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Observer SeedObserver
}

// Add inserts one meme and returns its id. A duplicate title is rejected by
// the store and surfaces as a StorageError.
func (w *Writer) Add(ctx context.Context, in MemeInput) (uint64, error) {
	m, err := newMeme(in)
	if err != nil {
		return 0, err
	}
	if err := w.DB.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, &StorageError{Op: "add meme: title already exists", Err: err}
		}
		return 0, wrapStorage("add meme", err)
	}
	return m.ID, nil
}

// Seed inserts every candidate whose title is not taken yet and returns how
// many were inserted. Each candidate is its own unit; a failure stops the run
// and reports the count so far.
func (w *Writer) Seed(ctx context.Context, set []MemeInput) (int, error) {
	inserted := 0
	defer func() {
		if inserted > 0 && w.Observer != nil {
			w.Observer.SeedInserted(inserted)
		}
	}()

	for _, in := range set {
		m, err := newMeme(in)
		if err != nil {
			return inserted, err
		}

		var exists bool
		if err := w.DB.WithContext(ctx).
			Raw(`select exists(select 1 from memes where title = ?)`, m.Title).
			Scan(&exists).Error; err != nil {
			return inserted, wrapStorage("seed memes", err)
		}
		if exists {
			continue
		}

		// A concurrent seed may insert the same title between the check and
		// the insert; the unique index turns that into a skipped row.
		res := w.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
			Create(&m)
		if res.Error != nil {
			return inserted, wrapStorage("seed memes", res.Error)
		}
		if res.RowsAffected == 1 {
			inserted++
		}
	}

	w.logger().Info("seed finished", zap.Int("candidates", len(set)), zap.Int("inserted", inserted))
	return inserted, nil
}

func (w *Writer) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func newMeme(in MemeInput) (Meme, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.MediaType = strings.TrimSpace(in.MediaType)

	if err := inputValidator().Struct(in); err != nil {
		return Meme{}, fromValidator(err)
	}

	if in.MediaType == "" {
		in.MediaType = defaultMediaType
	}
	if in.Category == "" {
		in.Category = defaultCategory
	}

	return Meme{
		Title:       in.Title,
		Description: in.Description,
		MediaURL:    in.MediaURL,
		MediaType:   in.MediaType,
		Category:    in.Category,
		SourceURL:   in.SourceURL,
		Tags:        pq.StringArray(NormalizeTags(in.Tags)),
	}, nil
}
