package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks/internal/db"
)

type Bookmark struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewBookmark(db *gorm.DB, logger *zap.SugaredLogger) *Bookmark {
	return &Bookmark{
		db:     db,
		logger: logger,
	}
}

func (s *Bookmark) List(userID uint64) ([]db.Bookmark, error) {
	sql, args, err := squirrel.
		Select("id", "title", "link", "description", "user_id", "created_at", "updated_at").
		From("bookmarks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	bookmarks := make([]db.Bookmark, 0)
	res := s.db.Raw(sql, args...).Scan(&bookmarks)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	return bookmarks, nil
}

// Get returns nil without an error when the bookmark does not exist or
// belongs to someone else; the two cases are indistinguishable to the caller.
func (s *Bookmark) Get(userID, bookmarkID uint64) (*db.Bookmark, error) {
	bookmark := db.Bookmark{}
	res := s.db.Where("id = ? AND user_id = ?", bookmarkID, userID).First(&bookmark)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &bookmark, nil
}

func (s *Bookmark) Create(userID uint64, title, link string, description *string) (*db.Bookmark, error) {
	bookmark := db.Bookmark{
		Title:       title,
		Link:        link,
		Description: description,
		UserID:      userID,
	}

	res := s.db.Create(&bookmark)
	if res.Error != nil {
		return nil, res.Error
	}

	return &bookmark, nil
}

// Update applies the supplied fields in a single conditional UPDATE scoped by
// id and owner, then checks the affected-row count. A bookmark owned by
// another user fails exactly like a missing one.
func (s *Bookmark) Update(userID, bookmarkID uint64, title, link, description *string) (*db.Bookmark, error) {
	fields := map[string]interface{}{}
	if title != nil {
		fields["title"] = *title
	}
	if link != nil {
		fields["link"] = *link
	}
	if description != nil {
		fields["description"] = *description
	}

	if len(fields) > 0 {
		res := s.db.Model(&db.Bookmark{}).
			Where("id = ? AND user_id = ?", bookmarkID, userID).
			Updates(fields)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "update bookmark")
		}
		if res.RowsAffected == 0 {
			return nil, ErrAccessDenied
		}
	}

	bookmark, err := s.Get(userID, bookmarkID)
	if err != nil {
		return nil, err
	}
	if bookmark == nil {
		return nil, ErrAccessDenied
	}
	return bookmark, nil
}

// Delete removes the bookmark with a conditional DELETE scoped by id and
// owner, same affected-row check as Update.
func (s *Bookmark) Delete(userID, bookmarkID uint64) error {
	res := s.db.Where("id = ? AND user_id = ?", bookmarkID, userID).Delete(&db.Bookmark{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete bookmark")
	}
	if res.RowsAffected == 0 {
		return ErrAccessDenied
	}
	return nil
}
