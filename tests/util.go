// Package testutil holds fixtures shared by the tests of several packages.
package testutil

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/visit"
	logsvc "github.com/trezcool/taqyeem/services/logger"
)

// Config is a test-mode configuration independent of the environment.
func Config() *core.Config {
	return &core.Config{
		Debug:            false,
		TestMode:         true,
		AppName:          "Taqyeem",
		Env:              "TEST",
		Build:            "test",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Taqyeem", Address: "noreply@test.ae"},
		WorkDir:          core.Getwd(),
		Location:         time.UTC,
		Server:           core.ServerConfig{JWTExpirationDelta: time.Hour},
		Database:         core.DatabaseConfig{Engine: "inmem"},
	}
}

// Logger discards everything.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

// Validator returns a validator with every domain validation registered.
func Validator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	person.InitValidators(validate, translator)
	visit.InitValidators(validate, translator)
	return validate, translator
}

func CreatePerson(t *testing.T, repo person.Repository, accountID string, p person.Person) person.Person {
	t.Helper()
	p.AccountID = accountID
	if p.Kind == "" {
		p.Kind = person.KindTeacher
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p, err := repo.CreatePerson(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePerson() failed: %v", err)
	}
	return p
}

// Storage is an in-memory core.ObjectStorage. Set Err to make every call fail,
// or EmptyURL to upload without returning a URL.
type Storage struct {
	Err      error
	EmptyURL bool

	mutex   sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

var _ core.ObjectStorage = (*Storage)(nil)

var ErrStorageDown = errors.New("storage unavailable")

func NewStorage() *Storage {
	return &Storage{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *Storage) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mutex.Lock()
	s.objects[key] = buf.Bytes()
	s.types[key] = contentType
	s.mutex.Unlock()
	if s.EmptyURL {
		return "", nil
	}
	return "https://files.test/" + key, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mutex.Lock()
	delete(s.objects, key)
	delete(s.types, key)
	s.mutex.Unlock()
	return nil
}

// Object returns a stored object and its content type.
func (s *Storage) Object(key string) ([]byte, string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b, ok := s.objects[key]
	return b, s.types[key], ok
}

func (s *Storage) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.objects)
}
