package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks/internal/db"
)

type User struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewUser(db *gorm.DB, logger *zap.SugaredLogger) *User {
	return &User{
		db:     db,
		logger: logger,
	}
}

func (s *User) Me(userID uint64) (*db.User, error) {
	user := db.User{}
	res := s.db.First(&user, userID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &user, nil
}

// Update patches only the supplied fields; absent fields keep their stored
// values. Changing the email to one already in use is reported the same way
// as a duplicate signup.
func (s *User) Update(userID uint64, email, firstName, lastName *string) (*db.User, error) {
	fields := map[string]interface{}{}
	if email != nil {
		fields["email"] = *email
	}
	if firstName != nil {
		fields["first_name"] = *firstName
	}
	if lastName != nil {
		fields["last_name"] = *lastName
	}

	if len(fields) > 0 {
		res := s.db.Model(&db.User{}).Where("id = ?", userID).Updates(fields)
		if res.Error != nil {
			if isDuplicateKey(res.Error) {
				return nil, ErrCredentialsTaken
			}
			return nil, errors.Wrap(res.Error, "update user")
		}
	}

	return s.Me(userID)
}
