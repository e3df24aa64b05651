package api

import (
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/rbhz/voca/app/db"
	"github.com/rbhz/voca/app/voca"
)

const (
	testTGToken   = "123123213:1231231312"
	testJWTSecret = "tokentokentokentoken"
	testUserID    = 1
	testAdminID   = 2
)

// emptyHandler is a dummy handler for testing.
type emptyHandler struct{}

func (h *emptyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {}

// ErrorStorage is a dummy storage for testing storage error handling.
type ErrorStorage struct {
	*db.InMemoryStorage
}

func (d ErrorStorage) List() (map[string]voca.Word, error) {
	return nil, errors.New("test")
}

func (d ErrorStorage) Get(string) (voca.Word, error) {
	return voca.Word{}, errors.New("test")
}

func (d ErrorStorage) Save(string, voca.Word) error {
	return errors.New("test")
}

// getTestServer returns a test server.
func getTestServer(storage db.Storage) (*httptest.Server, func()) {
	if storage == nil {
		storage = db.NewInMemoryStorage()
	}

	server := NewServer(storage, testTGToken, testJWTSecret, []int64{testAdminID})
	srv := httptest.NewServer(server.router)
	return srv, srv.Close
}

func getTestAuth() *authService {
	return &authService{
		telegramToken: testTGToken,
		jwtSecret:     []byte(testJWTSecret),
		admins:        map[int64]struct{}{testAdminID: {}},
	}
}

// getTestJWT returns a test JWT signed with testJWTSecret
func getTestJWT() string {
	token, _ := getTestAuth().createToken(testUserID)
	return "Bearer " + token
}

// getAdminJWT returns a test JWT of an admin user
func getAdminJWT() string {
	token, _ := getTestAuth().createToken(testAdminID)
	return "Bearer " + token
}
