package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/wilayah_api/internal/auth"
	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/middleware"
	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/testsupport"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type server struct {
	router    *gin.Engine
	territory *testsupport.Territory
	store     *testsupport.SpyStore
	signer    *utils.JWTSigner
	db        *fakeDB
	provinces *service.ProvinceService
	regencies *service.RegencyService
	auth      *service.AdminAuthService
}

func newServer(t *testing.T) *server {
	t.Helper()

	territory := testsupport.NewTerritory()
	store := &testsupport.SpyStore{Inner: cache.NewMemoryStore(0, time.Hour)}
	signer := utils.NewJWTSigner("handler-test", time.Hour)
	policy := auth.NewPolicy(auth.DefaultRoles)
	db := &fakeDB{}

	validator := service.NewValidator(territory.Provinces(), territory.Regencies(), policy.Authorizer())
	reads := cache.NewReadThrough(store)
	provinces := service.NewProvinceService(territory.Provinces(), validator, reads)
	regencies := service.NewRegencyService(territory.Regencies(), provinces, validator, reads)
	runTx := func(_ context.Context, fn func(service.ProvinceRepo, service.RegencyRepo) error) error {
		return territory.Atomically(func() error { return fn(territory.Provinces(), territory.Regencies()) })
	}
	exports := service.NewExportService(provinces, regencies, validator)
	adminAuth := service.NewAdminAuthService(testsupport.NewAdminUsers(), signer)

	handlers := &Handlers{
		Health:    NewHealthHandler(db, store),
		Auth:      NewAuthHandler(adminAuth),
		Territory: NewTerritoryHandler(provinces, regencies),
		Province: NewProvinceHandler(provinces,
			service.NewImportService(territory.Provinces(), validator, reads),
			service.NewDemoService(territory.Provinces(), runTx, validator, reads),
			exports),
		Regency: NewRegencyHandler(regencies, exports),
		Cache:   NewCacheHandler(validator, reads),
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	SetupRoutes(router, handlers, middleware.NewJWTMiddleware(signer, nil))

	return &server{
		router:    router,
		territory: territory,
		store:     store,
		signer:    signer,
		db:        db,
		provinces: provinces,
		regencies: regencies,
		auth:      adminAuth,
	}
}

var (
	adminActor    = models.Actor{ID: 1, Email: "admin@example.com", Role: models.RoleAdministrator}
	operatorActor = models.Actor{ID: 2, Email: "ops@example.com", Role: models.RoleOperator}
	viewerActor   = models.Actor{ID: 3, Email: "viewer@example.com", Role: models.RoleViewer}
)

func (s *server) token(t *testing.T, a models.Actor) string {
	t.Helper()
	tok, err := s.signer.Generate(a.ID, a.Email, a.Role)
	require.NoError(t, err)
	return tok
}

// do sends body (JSON-encoded unless it is an io.Reader) as actor. A zero
// actor sends no Authorization header.
func (s *server) do(t *testing.T, method, path string, a models.Actor, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Role != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, a))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) upload(t *testing.T, path string, a models.Actor, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, a))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Meta struct {
		RequestID  string            `json:"requestId"`
		Pagination *utils.Pagination `json:"pagination"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func (s *server) seedProvince(t *testing.T, code, name string) *models.Province {
	t.Helper()
	p, err := s.provinces.Create(context.Background(), adminActor, service.ProvinceInput{Code: code, Name: name})
	require.NoError(t, err)
	return p
}

func (s *server) seedRegency(t *testing.T, provinceID int, code, name, typ string) *models.Regency {
	t.Helper()
	r, err := s.regencies.Create(context.Background(), adminActor, provinceID, service.RegencyInput{Code: code, Name: name, Type: typ})
	require.NoError(t, err)
	return r
}

var errBoom = errors.New("boom")
