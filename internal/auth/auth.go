package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"StructFlow/internal/repo"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userLoginKey contextKey = "userLogin"

	CookieName = "session_token"
	DefaultTTL = 30 * 24 * time.Hour
	MinPassLen = 6
)

type Authenv struct {
	JWTkey []byte
	Repo   repo.Repository
	Log    *zap.Logger
	TTL    time.Duration
	// SecureCookie marks the session cookie HTTPS only.
	SecureCookie bool
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type Loginrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Registerrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// LimitMiddleware throttles per client host.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !i.getLimiter(ip).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// UserID returns the authenticated user's id placed by AuthMiddleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func Login(ctx context.Context) string {
	login, _ := ctx.Value(userLoginKey).(string)
	return login
}

// WithUser is what AuthMiddleware does after a token checks out.
func WithUser(ctx context.Context, userID, login string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userLoginKey, login)
}

func (env *Authenv) logger() *zap.Logger {
	if env.Log == nil {
		return zap.NewNop()
	}
	return env.Log
}

func (env *Authenv) ttl() time.Duration {
	if env.TTL <= 0 {
		return DefaultTTL
	}
	return env.TTL
}

func (env *Authenv) parse(tokenString string) (userID, login string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("unexpected claims")
	}
	userID, _ = claims["user_id"].(string)
	login, _ = claims["login"].(string)
	if userID == "" || login == "" {
		return "", "", errors.New("token lacks user claims")
	}
	return userID, login, nil
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware accepts a Bearer token or the session cookie.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		userID, login, err := env.parse(raw)
		if err != nil {
			env.logger().Debug("rejected token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, login)))
	})
}

// IssueToken signs a token for the user valid for the configured TTL.
func (env *Authenv) IssueToken(userID, login string) (string, time.Time, error) {
	exp := time.Now().Add(env.ttl())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"login":   login,
		"exp":     exp.Unix(),
	})
	s, err := token.SignedString(env.JWTkey)
	return s, exp, err
}

func (env *Authenv) respondWithToken(w http.ResponseWriter, code int, userID, login string) {
	tokenString, exp, err := env.IssueToken(userID, login)
	if err != nil {
		env.logger().Error("sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Expires:  exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   env.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(TokenResponse{Token: tokenString, UserID: userID, ExpiresAt: exp.UTC().Format(time.RFC3339)})
}

func (env *Authenv) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req Registerrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if req.Login == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login, email and password required")
		return
	}
	if len(req.Password) < MinPassLen {
		writeError(w, http.StatusBadRequest, "password too short")
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}
	id, err := env.Repo.CreateUser(r.Context(), req.Login, req.Email, hashedPassword)
	if errors.Is(err, repo.ErrDuplicate) {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		env.logger().Error("create user", zap.String("login", req.Login), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	env.logger().Info("user registered", zap.String("user_id", id))
	env.respondWithToken(w, http.StatusCreated, id, req.Login)
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	var req Loginrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login and password required")
		return
	}

	u, err := env.Repo.GetByLogin(r.Context(), req.Login)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}
	if err != nil {
		env.logger().Error("get user", zap.String("login", req.Login), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}
	env.respondWithToken(w, http.StatusOK, u.ID, u.Login)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
