package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookmarks/internal/db"
)

type Auth struct {
	db     *gorm.DB
	signer TokenSigner
	logger *zap.SugaredLogger
}

func NewAuth(db *gorm.DB, signer TokenSigner, logger *zap.SugaredLogger) *Auth {
	return &Auth{
		db:     db,
		signer: signer,
		logger: logger,
	}
}

// Signup hashes the password and inserts the user. A unique-email violation
// comes back as ErrCredentialsTaken; anything else bubbles unchanged. The
// returned record carries the generated id and timestamps.
func (s *Auth) Signup(email, password string, firstName, lastName *string) (*db.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := db.User{
		Email:     email,
		Hash:      hash,
		FirstName: firstName,
		LastName:  lastName,
	}
	res := s.db.Create(&user)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return nil, ErrCredentialsTaken
		}
		return nil, res.Error
	}

	return &user, nil
}

// Signin verifies the credentials and issues a token. An unknown email and a
// wrong password fail identically.
func (s *Auth) Signin(email, password string) (string, error) {
	user := db.User{}
	res := s.db.Where("email = ?", email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", ErrCredentialsIncorrect
		}
		return "", res.Error
	}

	if !verifyPassword(password, user.Hash) {
		return "", ErrCredentialsIncorrect
	}

	token, err := s.signer.Sign(user.ID, user.Email)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}
