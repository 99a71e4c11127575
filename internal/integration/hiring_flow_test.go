package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"talenthub/internal/app"
	"talenthub/internal/config"
	"talenthub/internal/domain/organization"
	"talenthub/internal/domain/user"
	"talenthub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "integration-secret"

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type idData struct {
	ID uuid.UUID `json:"id"`
}

type matchData struct {
	MatchScore       int  `json:"match_score"`
	MandatoryMissing bool `json:"mandatory_missing"`
	MatchedSkills    []struct {
		SkillName string `json:"skill_name"`
	} `json:"matched_skills"`
	MissingSkills []struct {
		SkillName  string `json:"skill_name"`
		IsRequired bool   `json:"is_required"`
	} `json:"missing_skills"`
}

type pageData struct {
	Items []idData `json:"items"`
	Total int      `json:"total"`
}

type seededUsers struct {
	employerID    uuid.UUID
	employerEmail string
	orgID         uuid.UUID
	candidateID   uuid.UUID
	candEmail     string
}

func TestIntegration_PostPublishApplyReview(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := testConfig(t)
	a, closeFn, err := app.Bootstrap(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = closeFn() }()

	seed := seedUsers(t, ctx, a)
	defer cleanupSeed(ctx, a, seed)

	empTok := login(t, a, seed.employerEmail)
	candTok := login(t, a, seed.candEmail)

	title := "Integration Backend " + uuid.NewString()[:8]
	var posting idData
	call(t, a, http.MethodPost, "/api/v1/jobs", empTok, map[string]any{
		"title":           title,
		"description":     "Build and run Go services",
		"employment_type": "full_time",
		"work_mode":       "remote",
		"skills": []map[string]any{
			{"skill_name": "Go", "is_required": true, "min_proficiency": 3},
			{"skill_name": "Docker", "is_required": true},
		},
	}, http.StatusCreated, &posting)
	if posting.ID == uuid.Nil {
		t.Fatalf("create job: empty id")
	}

	call(t, a, http.MethodPost, "/api/v1/jobs/"+posting.ID.String()+"/applications", candTok, nil, http.StatusNotFound, nil)

	call(t, a, http.MethodPatch, "/api/v1/jobs/"+posting.ID.String()+"/status", empTok,
		map[string]string{"status": "published"}, http.StatusOK, nil)

	var listed pageData
	call(t, a, http.MethodGet, "/api/v1/jobs?q="+url.QueryEscape(title), "", nil, http.StatusOK, &listed)
	if !containsID(listed.Items, posting.ID) {
		t.Fatalf("public search: expected posting %s in %d results", posting.ID, listed.Total)
	}

	call(t, a, http.MethodPost, "/api/v1/candidates/me/skills", candTok, map[string]any{
		"skill_name":        "Go",
		"proficiency_level": 4,
		"years_experience":  3,
	}, http.StatusCreated, nil)

	var m matchData
	call(t, a, http.MethodGet, "/api/v1/candidates/me/jobs/"+posting.ID.String()+"/match", candTok, nil, http.StatusOK, &m)
	if m.MatchScore < 0 || m.MatchScore > 100 {
		t.Fatalf("match: expected score 0-100, got %d", m.MatchScore)
	}
	if !m.MandatoryMissing {
		t.Fatalf("match: expected mandatory_missing=true")
	}
	if len(m.MatchedSkills) != 1 || m.MatchedSkills[0].SkillName != "Go" {
		t.Fatalf("match: expected Go matched, got %+v", m.MatchedSkills)
	}
	if len(m.MissingSkills) != 1 || m.MissingSkills[0].SkillName != "Docker" {
		t.Fatalf("match: expected Docker missing, got %+v", m.MissingSkills)
	}

	var applied idData
	call(t, a, http.MethodPost, "/api/v1/jobs/"+posting.ID.String()+"/applications", candTok,
		map[string]string{"cover_letter": "Hello"}, http.StatusCreated, &applied)
	call(t, a, http.MethodPost, "/api/v1/jobs/"+posting.ID.String()+"/applications", candTok, nil, http.StatusConflict, nil)

	var received []idData
	call(t, a, http.MethodGet, "/api/v1/jobs/"+posting.ID.String()+"/applications", empTok, nil, http.StatusOK, &received)
	if !containsID(received, applied.ID) {
		t.Fatalf("employer applications: expected %s", applied.ID)
	}

	call(t, a, http.MethodPatch, "/api/v1/applications/"+applied.ID.String()+"/status", empTok,
		map[string]string{"status": "hired"}, http.StatusConflict, nil)
	call(t, a, http.MethodPatch, "/api/v1/applications/"+applied.ID.String()+"/status", empTok,
		map[string]string{"status": "reviewing"}, http.StatusOK, nil)
	call(t, a, http.MethodPost, "/api/v1/applications/"+applied.ID.String()+"/withdraw", candTok, nil, http.StatusOK, nil)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	host := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	dbUser := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("TALENTHUB_TEST_DB_SSL_MODE"), "disable")

	if host == "" || port == "" || name == "" || dbUser == "" {
		t.Skip("missing test DB env vars: set TALENTHUB_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}

	return config.Config{
		App: config.AppConfig{AppName: "TalentHub", Environment: "test", HTTPPort: "0", CORSOrigins: "*"},
		Database: config.DatabaseConfig{
			DBHost:         host,
			DBPort:         port,
			DBName:         name,
			DBUser:         dbUser,
			DBPassword:     pass,
			DBSSLMode:      ssl,
			ConnectTimeout: 5 * time.Second,
			PoolMaxConns:   4,
		},
		Redis: config.RedisConfig{
			Addr:     stringsOrDefault(os.Getenv("TALENTHUB_TEST_REDIS_ADDR"), "127.0.0.1:1"),
			CacheTTL: time.Minute,
		},
		JWT: config.JWTConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: time.Hour,
		},
		OTP:        config.OTPConfig{Length: 6, TTL: 10 * time.Minute, ResendCooldown: time.Minute, MaxAttempts: 5},
		Mail:       config.MailConfig{From: "noreply@talenthub.test", Workers: 1},
		Storage:    config.StorageConfig{MaxUploadBytes: 5 << 20},
		LLM:        config.LLMConfig{Timeout: 10 * time.Second},
		Migrations: config.MigrationsConfig{Dir: resolveMigrationsDir(t), RunOnStart: true},
	}
}

func resolveMigrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("resolve migrations dir: runtime.Caller failed")
	}
	migDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "migrations"))
	if st, err := os.Stat(migDir); err != nil || !st.IsDir() {
		t.Fatalf("resolve migrations dir: not found or not a dir: %s", migDir)
	}
	return migDir
}

func seedUsers(t *testing.T, ctx context.Context, a *app.App) seededUsers {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := repository.NewPostgresUserRepository(a.Container.DB)
	suffix := uuid.NewString()[:8]
	now := time.Now().UTC()

	out := seededUsers{
		employerID:    uuid.New(),
		employerEmail: "employer-" + suffix + "@it.test",
		orgID:         uuid.New(),
		candidateID:   uuid.New(),
		candEmail:     "candidate-" + suffix + "@it.test",
	}

	employer := user.User{
		ID: out.employerID, Email: out.employerEmail, PasswordHash: string(hash), FullName: "IT Employer",
		Role: user.RoleEmployer, EmailVerified: true, CreatedAt: now,
	}
	org := organization.Organization{ID: out.orgID, Kind: organization.KindEmployer, Name: "IT Co " + suffix}
	if err := users.CreateUserWithOrganization(ctx, employer, org); err != nil {
		t.Fatalf("seed employer: %v", err)
	}

	cand := user.User{
		ID: out.candidateID, Email: out.candEmail, PasswordHash: string(hash), FullName: "IT Candidate",
		Role: user.RoleCandidate, EmailVerified: true, CreatedAt: now,
	}
	if err := users.CreateUser(ctx, cand); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return out
}

func cleanupSeed(ctx context.Context, a *app.App, seed seededUsers) {
	db := a.Container.DB
	_, _ = db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, seed.orgID)
	_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1 OR id = $2`, seed.employerID, seed.candidateID)
}

func login(t *testing.T, a *app.App, email string) string {
	t.Helper()

	var out struct {
		AccessToken string `json:"access_token"`
	}
	call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": testPassword}, http.StatusOK, &out)
	if out.AccessToken == "" {
		t.Fatalf("login %s: missing access_token", email)
	}
	return out.AccessToken
}

func call(t *testing.T, a *app.App, method, target, token string, body any, wantStatus int, out any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("%s %s: marshal: %v", method, target, err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Fiber.Test(req)
	if err != nil {
		t.Fatalf("%s %s: request error: %v", method, target, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s %s: decode error: %v", method, target, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status=%d, got %d (message=%s)", method, target, wantStatus, resp.StatusCode, sr.Message)
	}
	if out != nil {
		if err := json.Unmarshal(sr.Data, out); err != nil {
			t.Fatalf("%s %s: data unmarshal error: %v", method, target, err)
		}
	}
}

func containsID(items []idData, id uuid.UUID) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func stringsOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
