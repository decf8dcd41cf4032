package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/meduaid/qb-portal/internal/rbac"
)

// AuthService issues and parses the portal's HMAC access tokens.
type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "writer" or "admin"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "meduaid-qb-portal",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// Credentials verifies a username/password pair against the users table and
// returns the user's id and role.
type Credentials interface {
	Verify(username, password string) (id, role string, err error)
}

// DBCredentials checks bcrypt hashes stored in the users table. BootstrapUser
// and BootstrapHash, when set, admit an env-configured admin even before the
// users table is seeded.
type DBCredentials struct {
	DB            *sql.DB
	BootstrapUser string
	BootstrapHash string
}

var errBadCredentials = errors.New("invalid credentials")

func (c DBCredentials) Verify(username, password string) (string, string, error) {
	if c.DB != nil {
		var id, hash, role string
		err := c.DB.QueryRow(`SELECT id, password_hash, role FROM users WHERE username=$1`, username).
			Scan(&id, &hash, &role)
		switch {
		case err == nil:
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
				return "", "", errBadCredentials
			}
			return id, role, nil
		case !errors.Is(err, sql.ErrNoRows):
			return "", "", err
		}
	}
	if c.BootstrapUser != "" && username == c.BootstrapUser && c.BootstrapHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(c.BootstrapHash), []byte(password)) == nil {
			return c.BootstrapUser, "admin", nil
		}
	}
	return "", "", errBadCredentials
}

// LoginHandler exchanges a username/password for an access token.
// POST /auth/login {"username": "...", "password": "..."}
func LoginHandler(a *AuthService, creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		id, role, err := creds.Verify(req.Username, req.Password)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(id, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": tok,
			"role":         role,
		})
	}
}

// JWTMiddleware validates the bearer token and attaches the caller's id and
// role to the request context for the RBAC layer and handlers.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
