package integration_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/app/apiapp"
	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
	authsvc "github.com/praneeth552/Jobfinder/internal/services/auth"
	"github.com/praneeth552/Jobfinder/internal/services/entitlements"
	"github.com/praneeth552/Jobfinder/internal/services/payments"
	"github.com/praneeth552/Jobfinder/internal/services/rate"
	"github.com/praneeth552/Jobfinder/internal/services/recommendations"
	subsvc "github.com/praneeth552/Jobfinder/internal/services/subscriptions"
	userssvc "github.com/praneeth552/Jobfinder/internal/services/users"
)

const webhookSecret = "whsec_smoke"

type memoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (model.User, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[oid]
	return u, ok, nil
}

func (m *memoryUsers) ApplyDowngrade(_ context.Context, id primitive.ObjectID, patch rules.Patch, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.PlanType != enums.PlanTypePro {
		return false, nil
	}
	m.users[id] = patch.ApplyToUser(u)
	return true, nil
}

func (m *memoryUsers) ApplyBySubscriptionID(_ context.Context, subscriptionID string, patch rules.Patch, _ time.Time) (model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.SubscriptionID() == subscriptionID {
			u = patch.ApplyToUser(u)
			m.users[id] = u
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

type noRecommendations struct{}

func (noRecommendations) LatestGeneratedAt(context.Context, string) (*time.Time, error) {
	return nil, nil
}

func (noRecommendations) Latest(context.Context, string) (model.Recommendation, bool, error) {
	return model.Recommendation{}, false, nil
}

func (noRecommendations) Save(context.Context, model.Recommendation) error {
	return nil
}

func (noRecommendations) ListRecent(context.Context, int) ([]model.JobListing, error) {
	return nil, nil
}

type smokeEnv struct {
	server *httptest.Server
	token  string
}

func newSmokeEnv(t *testing.T) smokeEnv {
	t.Helper()

	subID := "sub_smoke"
	user := model.User{
		ID:                     primitive.NewObjectID(),
		Email:                  "ravi@example.com",
		PlanType:               enums.PlanTypeFree,
		RazorpaySubscriptionID: &subID,
		SheetsEnabled:          true,
	}
	store := &memoryUsers{users: map[primitive.ObjectID]model.User{user.ID: user}}
	policy := rules.DefaultPolicy()
	log := zap.NewNop()

	auth := authsvc.NewService(authsvc.NewJWTManager("smoke-secret", time.Hour))
	token, err := auth.IssueAccessToken(user.HexID(), user.Email, "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	users := userssvc.NewService(store, subsvc.NewReconciler(store, policy, log), log)
	recs := recommendations.NewService(rate.NewLimiter(noRecommendations{}, policy), noRecommendations{}, noRecommendations{}, nil, recommendations.Config{}, log)

	r := chi.NewRouter()
	apiapp.RegisterRoutes(r, apiapp.Dependencies{
		Tokens:          auth,
		Users:           users,
		Webhooks:        payments.NewIngestor(store, nil, nil, webhookSecret, policy, log),
		Entitlements:    entitlements.NewService(users, policy),
		Recommendations: recs,
		Logger:          log,
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return smokeEnv{server: ts, token: token}
}

type entitlementsPayload struct {
	IsPro                  bool   `json:"is_pro"`
	PlanType               string `json:"plan_type"`
	GenerationIntervalDays int    `json:"generation_interval_days"`
	IntegrationsEnabled    bool   `json:"integrations_enabled"`
}

func (e smokeEnv) entitlements(t *testing.T) entitlementsPayload {
	t.Helper()

	req, _ := http.NewRequest(http.MethodGet, e.server.URL+"/v1/entitlements", nil)
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get entitlements: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected entitlements status: %d", resp.StatusCode)
	}

	var payload entitlementsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode entitlements: %v", err)
	}
	return payload
}

func (e smokeEnv) webhook(t *testing.T, body string) int {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(body))

	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", hex.EncodeToString(mac.Sum(nil)))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	env := newSmokeEnv(t)

	resp, err := http.Get(env.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestChargeWebhookUpgradesEntitlements(t *testing.T) {
	env := newSmokeEnv(t)

	before := env.entitlements(t)
	if before.IsPro || before.GenerationIntervalDays != 30 || before.IntegrationsEnabled {
		t.Fatalf("unexpected free entitlements: %+v", before)
	}

	charged := `{"event":"subscription.charged","payload":{"subscription":{"entity":{"id":"sub_smoke"}}}}`
	if status := env.webhook(t, charged); status != http.StatusOK {
		t.Fatalf("unexpected webhook status: %d", status)
	}

	after := env.entitlements(t)
	if !after.IsPro || after.PlanType != "pro" || after.GenerationIntervalDays != 7 || !after.IntegrationsEnabled {
		t.Fatalf("unexpected pro entitlements: %+v", after)
	}

	cancelled := `{"event":"subscription.cancelled","payload":{"subscription":{"entity":{"id":"sub_smoke"}}}}`
	if status := env.webhook(t, cancelled); status != http.StatusOK {
		t.Fatalf("unexpected webhook status: %d", status)
	}
	if still := env.entitlements(t); !still.IsPro {
		t.Fatalf("cancellation should keep access until the period ends: %+v", still)
	}
}

func TestUnsignedWebhookRejected(t *testing.T) {
	env := newSmokeEnv(t)

	resp, err := http.Post(env.server.URL+"/webhooks/razorpay", "application/json", strings.NewReader(`{"event":"subscription.charged"}`))
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := newSmokeEnv(t)

	resp, err := http.Get(env.server.URL + "/v1/entitlements")
	if err != nil {
		t.Fatalf("get entitlements: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
