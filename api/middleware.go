package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pa-prabumulih/sicantik-api/databases"
)

// MiddlewareDB is a struct that holds the database
type MiddlewareDB struct {
	DB databases.AdminDatabase
}

var authenticator auth.Authenticator
var cache store.Cache

// Middleware guards the admin routes: only an authenticated archive-office
// admin may create, update, delete or re-archive case records. Lookup routes
// stay open for the front desk.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("admin %s authenticated", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// CreateToken logs an admin in: the basic credential pair is verified against
// the admin collection and a bearer token for the session is returned.
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	username, _, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	if _, err := authenticator.Authenticate(r); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	adminName := strings.ToLower(username)
	adminID := "local"
	if m.DB != nil {
		admin, err := m.DB.FindOne(r.Context(), bson.M{"username": adminName, "active": true})
		if err != nil {
			http.Error(w, "failed to get admin by username", http.StatusUnauthorized)
			return
		}
		adminName = admin.Username
		adminID = admin.ID.Hex()
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(adminName, adminID, nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	body := fmt.Sprintf(`{"token": "%s", "_id": "%s"}`, token, adminID)
	w.Write([]byte(body))
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*12)
	basicStrategy := basic.New(m.ValidateAdmin, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateAdmin checks a basic credential pair against the admin collection,
// or against the bootstrap credential when running without a database.
func (m MiddlewareDB) ValidateAdmin(ctx context.Context, r *http.Request, username, password string) (auth.Info, error) {
	if m.DB == nil {
		wantUser, wantPass := databases.BootstrapCredentials()
		userMatch := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(username))), []byte(wantUser)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1
		if userMatch && passMatch {
			return auth.NewDefaultUser(wantUser, "local", nil, nil), nil
		}
		return nil, fmt.Errorf("invalid credentials")
	}

	admin, err := m.DB.FindOne(ctx, bson.M{"username": strings.ToLower(strings.TrimSpace(username)), "active": true})
	if err != nil {
		return nil, fmt.Errorf("no matching admin found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	return auth.NewDefaultUser(admin.Username, admin.ID.Hex(), nil, nil), nil
}

// RevokeToken logs an admin out by revoking the session token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
