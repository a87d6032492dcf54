package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	captchaapp "github.com/calculation/backend/internal/application/captcha"
	catalogapp "github.com/calculation/backend/internal/application/catalog"
	"github.com/calculation/backend/internal/application/export"
	identityapp "github.com/calculation/backend/internal/application/identity"
	"github.com/calculation/backend/internal/application/margin"
	"github.com/calculation/backend/internal/application/notification"
	"github.com/calculation/backend/internal/application/partner"
	"github.com/calculation/backend/internal/application/report"
	"github.com/calculation/backend/internal/application/setting"
	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/captcha"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/infrastructure/auth"
	"github.com/calculation/backend/internal/infrastructure/cache"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/calculation/backend/internal/infrastructure/dictionary"
	"github.com/calculation/backend/internal/infrastructure/event"
	"github.com/calculation/backend/internal/infrastructure/lock"
	"github.com/calculation/backend/internal/infrastructure/mail"
	"github.com/calculation/backend/internal/infrastructure/persistence"
	"github.com/calculation/backend/internal/infrastructure/phone"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/calculation/backend/internal/interfaces/http/handler"
	"github.com/calculation/backend/internal/interfaces/http/middleware"
	"github.com/calculation/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminPassword = "secret123"

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingMailer keeps the sent messages
type recordingMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg *mail.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message(nil), m.sent...)
}

// apiFixture serves the whole API over a SQLite database
type apiFixture struct {
	engine    *gin.Engine
	db        *persistence.Database
	jwt       *auth.JWTService
	blacklist *auth.MemoryTokenBlacklist
	mailer    *recordingMailer
	images    *storage.MemoryObjectStorage

	admin    *identity.User
	user     *identity.User
	editable *calculation.CalculationState
	closed   *calculation.CalculationState
	group    *catalog.Group
	category *catalog.Category
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DBName:       filepath.Join(t.TempDir(), "calculation.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(ctx))

	calcRepo := persistence.NewGormCalculationRepository(db.DB)
	stateRepo := persistence.NewGormCalculationStateRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	marginRepo := persistence.NewGormGlobalMarginRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	f := &apiFixture{
		db: db,
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			RefreshSecret:          "test-refresh-secret-key-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "calculation-test",
		}),
		blacklist: auth.NewMemoryTokenBlacklist(),
		mailer:    &recordingMailer{},
		images:    storage.NewMemoryObjectStorage("http://files.test"),
	}

	renderer, err := mail.NewRenderer()
	require.NoError(t, err)
	store := cache.NewMemoryCaptchaStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	bus := event.NewInMemoryEventBus(logger)

	settings := setting.NewService(propertyRepo, stateRepo, categoryRepo, decimal.NewFromFloat(1.1), logger)
	notifications := notification.NewService(f.mailer, renderer, userRepo, notification.Config{
		AppName:    "Calculation",
		BaseURL:    "http://calculation.test",
		AdminEmail: "admin@example.com",
	}, nil, logger)
	captchas := captchaapp.NewService(
		captcha.NewBuilder(dictionary.Default(), rand.New(rand.NewPCG(1, 2)), captcha.LetterGenerator{}),
		store, time.Minute, nil, logger)
	exports := export.NewService(export.Repositories{
		Calculations:  calcRepo,
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		Products:      productRepo,
		Tasks:         taskRepo,
		Customers:     customerRepo,
		GlobalMargins: marginRepo,
	}, settings, export.DefaultRegistry(), storage.NewMemoryObjectStorage("http://archive.test"), nil, logger)
	calculations := calcapp.NewCalculationService(calcapp.Repositories{
		Calculations:  calcRepo,
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		GlobalMargins: marginRepo,
	}, settings, bus, lock.NewLocalLocker(), nil, config.CalculationConfig{
		MinMargin:     decimal.NewFromFloat(1.1),
		UpdateWorkers: 2,
		UpdateBatch:   10,
		LockTTL:       time.Minute,
	}, logger)

	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(identityapp.NewAuthService(userRepo, f.jwt, f.blacklist, captchas, notifications,
			identityapp.DefaultAuthServiceConfig(), nil, logger)),
		Captcha:          handler.NewCaptchaHandler(captchas),
		Calculation:      handler.NewCalculationHandler(calculations, exports),
		CalculationState: handler.NewCalculationStateHandler(calcapp.NewStateService(stateRepo)),
		Group:            handler.NewGroupHandler(catalogapp.NewGroupService(groupRepo)),
		Category:         handler.NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo, groupRepo)),
		Product:          handler.NewProductHandler(catalogapp.NewProductService(productRepo, categoryRepo)),
		Task:             handler.NewTaskHandler(catalogapp.NewTaskService(taskRepo, categoryRepo)),
		GlobalMargin:     handler.NewGlobalMarginHandler(margin.NewGlobalMarginService(marginRepo)),
		Customer:         handler.NewCustomerHandler(partner.NewCustomerService(customerRepo, phone.NewNormalizer("CH"))),
		User: handler.NewUserHandler(identityapp.NewUserService(userRepo, f.blacklist, 24*time.Hour,
			f.images, 64, notifications, logger)),
		Setting: handler.NewSettingHandler(settings),
		Report:  handler.NewReportHandler(report.NewReportService(calcRepo, logger)),
		Export:  handler.NewExportHandler(exports),
		Contact: handler.NewContactHandler(notifications),
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"database": db.PingContext,
		}),
	}

	f.engine = gin.New()
	f.engine.Use(middleware.RequestID())
	r := router.NewRouter(f.engine)
	for _, g := range router.APIGroups(handlers, router.Guards{
		Authenticated: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     f.jwt,
			TokenBlacklist: f.blacklist,
		}),
		Admin: middleware.RequireAdmin(),
	}) {
		r.Register(g)
	}
	r.Setup()

	f.seed(t, ctx, userRepo, stateRepo, groupRepo, categoryRepo)
	return f
}

func (f *apiFixture) seed(
	t *testing.T,
	ctx context.Context,
	users identity.UserRepository,
	states calculation.CalculationStateRepository,
	groups catalog.GroupRepository,
	categories catalog.CategoryRepository,
) {
	t.Helper()
	var err error

	f.admin, err = identity.NewUser("admin", "admin@example.com", adminPassword, identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, f.admin))
	f.user, err = identity.NewUser("john", "john@example.com", adminPassword, identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, f.user))

	f.editable, err = calculation.NewCalculationState("OPEN", "Being edited", true, "#00FF00")
	require.NoError(t, err)
	require.NoError(t, states.Save(ctx, f.editable))
	f.closed, err = calculation.NewCalculationState("CLOSED", "Archived", false, "#FF0000")
	require.NoError(t, err)
	require.NoError(t, states.Save(ctx, f.closed))

	f.group, err = catalog.NewGroup("WORK", "Labour")
	require.NoError(t, err)
	require.NoError(t, groups.Save(ctx, f.group))
	f.category, err = catalog.NewCategory("PAINT", "Painting", f.group)
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, f.category))
}

// token returns an access token of the user
func (f *apiFixture) token(t *testing.T, user *identity.User) string {
	t.Helper()
	pair, err := f.jwt.GenerateTokenPair(auth.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	require.NoError(t, err)
	return pair.AccessToken
}

// do sends a request with an optional JSON body and bearer token
func (f *apiFixture) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.send(req, token)
}

func (f *apiFixture) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
	Error *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData decodes the data of a successful response into T
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

// idOf extracts the id of a created resource
func idOf(t *testing.T, w *httptest.ResponseRecorder) uuid.UUID {
	t.Helper()
	data := decodeData[struct {
		ID uuid.UUID `json:"id"`
	}](t, w)
	require.NotEqual(t, uuid.Nil, data.ID)
	return data.ID
}
