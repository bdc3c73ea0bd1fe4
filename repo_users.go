package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// UsersStore is the bun backed CredentialStore.
type UsersStore struct {
	db *bun.DB
}

var _ CredentialStore = (*UsersStore)(nil)

// NewUsersStore returns a store over db.
func NewUsersStore(db *bun.DB) *UsersStore {
	return &UsersStore{db: db}
}

// OpenSQLite opens a SQLite database through the bun sqlite shim.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the users table if it does not exist.
func (s *UsersStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// FindByUsername loads the user with the exact username.
func (s *UsersStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.FindByUsernameTx(ctx, s.db, username)
}

func (s *UsersStore) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound.Clone().WithMetadata(map[string]any{
				"username": username,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	return record, nil
}

// Save inserts a new user. A unique violation on username yields
// ErrUsernameTaken and leaves the table untouched.
func (s *UsersStore) Save(ctx context.Context, user *User) (*User, error) {
	var out *User
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		out, err = s.SaveTx(ctx, tx, user)
		return err
	})
	return out, err
}

func (s *UsersStore) SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil {
		return nil, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	if _, err := s.FindByUsernameTx(ctx, tx, user.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !HasTextCode(err, TextCodeIdentityNotFound) {
		return nil, err
	}

	if user.CreatedAt == nil {
		now := time.Now().UTC()
		user.CreatedAt = &now
	}

	res, err := tx.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}

	if user.ID == 0 && res != nil {
		if id, err := res.LastInsertId(); err == nil {
			user.ID = id
		}
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
