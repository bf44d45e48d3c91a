package testserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specworks/specforge/internal/domain/event"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/mcp"
	"github.com/specworks/specforge/internal/sqlite"
	"github.com/specworks/specforge/internal/transport"
	"github.com/specworks/specforge/internal/workspace"
)

type TestServer struct {
	Server     *httptest.Server
	DB         *sqlite.DB
	Workspaces *workspace.Manager
	Token      string
	TenantID   string
}

func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	projectRepo := sqlite.NewProjectRepository(db)
	documentRepo := sqlite.NewDocumentRepository(db)
	eventRepo := sqlite.NewEventRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	projectSvc := project.NewService(projectRepo, documentRepo, nil)
	eventSvc := event.NewService(eventRepo, nil)

	workspaces := workspace.NewManager(workspace.Options{
		Projects:  projectSvc,
		Documents: documentRepo,
		Events:    eventSvc,
	})

	handler := mcp.NewHandler(workspaces, searchRepo, eventSvc)

	resolver := &apiKeyResolver{db: db}
	server := httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(resolver)))

	ts := &TestServer{
		Server:     server,
		DB:         db,
		Workspaces: workspaces,
		Token:      token,
		TenantID:   tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		workspaces.CloseAll()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	hash := hashToken(token)
	_, err := ts.DB.Exec(
		`INSERT INTO api_keys (key_hash, tenant_id, created_at) VALUES (?, ?, ?)`,
		hash, tenantID, time.Now(),
	)
	return err
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&tenantID)
	if err != nil || tenantID == "" {
		return "", transport.ErrUnauthorized
	}
	return tenantID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
