package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/dana-ai-api/internal/cache"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	"github.com/yukikurage/dana-ai-api/internal/database"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/repository"
	"github.com/yukikurage/dana-ai-api/internal/services"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db          *gorm.DB
	authService *services.AuthService
	orgService  *services.OrganizationService
	workspace   *services.WorkspaceService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)

	return testEnv{
		db:          db,
		authService: services.NewAuthService(userRepo, testJWTSecret, time.Hour),
		orgService:  services.NewOrganizationService(orgRepo, userRepo, 0),
		workspace: services.NewWorkspaceService(services.WorkspaceRepositories{
			Platforms:     repository.NewPlatformRepository(db),
			Conversations: repository.NewConversationRepository(db),
			Messages:      repository.NewMessageRepository(db),
			Knowledge:     repository.NewKnowledgeBaseRepository(db),
		}, cache.NewMemoryCache(64, time.Minute), nil),
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func bytesReader(body []byte) *bytes.Reader {
	return bytes.NewReader(body)
}

func jsonBody(t *testing.T, payload any) []byte {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

// testContext builds a context for an authenticated user. A non-empty
// rc.OrganizationID marks the organization context as resolved.
func testContext(method, url string, body []byte, userID uint64, rc tenancy.RequestContext) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	if rc.OrganizationID != "" {
		c.Set(constants.ContextKeyRequestContext, rc)
	}

	return c, w
}
