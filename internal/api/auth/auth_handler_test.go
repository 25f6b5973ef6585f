package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	return NewHandler(testSecret, testIssuer, db, log), mock
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func userRows(email, passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), "Alice", email, passwordHash, now, now)
}

func TestRegister_Success(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postJSON(t, h.Register, "/AuthManagement/Register", RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "P@ssw0rd1",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result)
	require.NotEmpty(t, resp.Token)

	claims, err := h.tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRows("alice@example.com", "$2a$10$hash"))

	rec := postJSON(t, h.Register, "/AuthManagement/Register", RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "P@ssw0rd1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"email already exists"`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateRaceOnInsert(t *testing.T) {
	h, mock := newTestHandler(t)

	// Fast-path check sees nothing, but a concurrent registration wins the
	// insert: the UNIQUE constraint answer is authoritative.
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	rec := postJSON(t, h.Register, "/AuthManagement/Register", RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "P@ssw0rd1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"email already exists"`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ValidationErrorList(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("not-an-email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))

	rec := postJSON(t, h.Register, "/AuthManagement/Register", RegisterRequest{
		Email:    "not-an-email",
		Name:     "Alice",
		Password: "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs), "validation failures come back as a flat list")
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0], "email")
	assert.Contains(t, errs[1], "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/AuthManagement/Register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"invalid request"`, rec.Body.String())
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h.Register, "/AuthManagement/Register", RegisterRequest{
		Email: "alice@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"invalid request"`, rec.Body.String())
}

func TestLogin_Success(t *testing.T) {
	h, mock := newTestHandler(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("P@ssw0rd1"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRows("alice@example.com", string(hash)))

	rec := postJSON(t, h.Login, "/AuthManagement/Login", LoginRequest{
		Email:    "alice@example.com",
		Password: "P@ssw0rd1",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result)

	claims, err := h.tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Unknown email and wrong password must be indistinguishable on the wire.
func TestLogin_NoAccountExistenceOracle(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))

	unknownRec := postJSON(t, h.Login, "/AuthManagement/Login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "P@ssw0rd1",
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("P@ssw0rd1"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRows("alice@example.com", string(hash)))

	wrongPassRec := postJSON(t, h.Login, "/AuthManagement/Login", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password1",
	})

	assert.Equal(t, http.StatusBadRequest, unknownRec.Code)
	assert.Equal(t, http.StatusBadRequest, wrongPassRec.Code)
	assert.Equal(t, unknownRec.Body.String(), wrongPassRec.Body.String())
	assert.JSONEq(t, `"invalid authentication"`, unknownRec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h.Login, "/AuthManagement/Login", LoginRequest{Email: "alice@example.com"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `"invalid request"`, rec.Body.String())
}
