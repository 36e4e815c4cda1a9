package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var userCols = []string{"id", "username", "email", "password_hash", "settings", "created_at", "is_active"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*settings,\s*created_at,\s*is_active\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4::jsonb,\s*\$5,\s*\$6\)\s*RETURNING\s+id\s*$`

func newUser() *models.User {
	return &models.User{
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := newUser()
	mock.ExpectQuery(insertQ).
		WithArgs("alice", "alice@example.com", "$2a$hash", "{}", u.CreatedAt, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || got.UserName != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", common.ErrUsernameTaken},
		{"users_email_key", common.ErrEmailTaken},
	}

	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertQ).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			_, err := repo.Create(context.Background(), newUser())
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if !errors.Is(err, common.ErrorConflict) {
				t.Fatalf("want conflict kind, got %v", err)
			}
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), newUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "alice", "alice@example.com", "h", []byte(`{"theme":"dark"}`), created, true)
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByLogin error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "alice@example.com" || got.Settings["theme"] != "dark" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@b.c").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByEmail(context.Background(), "a@b.c")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByID_EmptySettings(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "alice", "alice@example.com", "h", nil, time.Now(), true)
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetUserByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.Settings == nil || len(got.Settings) != 0 {
		t.Fatalf("want empty settings, got %#v", got.Settings)
	}
}

func TestUpdate_UserNameOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*COALESCE\(\$2,\s*username\),\s*settings\s*=\s*COALESCE\(\$3::jsonb,\s*settings\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,.*$`

	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "bob", "alice@example.com", "h", []byte(`{}`), time.Now(), true)
	mock.ExpectQuery(q).WithArgs("u-1", "bob", nil).WillReturnRows(rows)

	name := "bob"
	got, err := repo.Update(context.Background(), "u-1", models.ProfileUpdate{UserName: &name})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.UserName != "bob" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdate_Settings(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "alice", "alice@example.com", "h", []byte(`{"lang":"en"}`), time.Now(), true)
	mock.ExpectQuery(`^UPDATE\s+users`).WithArgs("u-1", nil, `{"lang":"en"}`).WillReturnRows(rows)

	got, err := repo.Update(context.Background(), "u-1", models.ProfileUpdate{Settings: map[string]any{"lang": "en"}})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Settings["lang"] != "en" {
		t.Fatalf("unexpected settings: %#v", got.Settings)
	}
}

func TestUpdate_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	name := "bob"

	mock.ExpectQuery(`^UPDATE\s+users`).WillReturnError(sql.ErrNoRows)
	if _, err := repo.Update(context.Background(), "u-1", models.ProfileUpdate{UserName: &name}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}

	mock.ExpectQuery(`^UPDATE\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	if _, err := repo.Update(context.Background(), "u-1", models.ProfileUpdate{UserName: &name}); !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want username taken, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	mock.ExpectExec(q).WithArgs("u-2").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "u-2"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}

	mock.ExpectExec(q).WithArgs("u-3").WillReturnError(errors.New("boom"))
	if err := repo.Delete(context.Background(), "u-3"); err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
