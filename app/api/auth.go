package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const ctxUserKey ctxKey = "user"

const tokenTTL = 24 * time.Hour

// JWTClaims custom claims with user id
type JWTClaims struct {
	User  *int64 `json:"user"`
	Admin bool   `json:"admin,omitempty"`
	jwt.StandardClaims
}

// AuthResponse response for authentication
type AuthResponse struct {
	Token string `json:"token"`
}

// apiUser is an authenticated API user
type apiUser struct {
	ID    int64
	Admin bool
}

// authService implements methods for API authentication
type authService struct {
	telegramToken string
	jwtSecret     []byte
	admins        map[int64]struct{}
}

// createToken creates JWT token, admin flag is taken from configured admins
func (s *authService) createToken(userID int64) (string, error) {
	_, admin := s.admins[userID]
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		User:  &userID,
		Admin: admin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(tokenTTL).Unix(),
			NotBefore: now.Unix(),
		},
	})
	tokenStr, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenStr, nil
}

// validTelegramHash checks login widget data signature
// docs: https://core.telegram.org/widgets/login#checking-authorization
func (s *authService) validTelegramHash(query url.Values) bool {
	keys := make([]string, 0, len(query))
	for key := range query {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var data strings.Builder
	for _, key := range keys {
		for _, val := range query[key] {
			data.WriteString(key + "=" + val)
		}
	}
	secretKey := sha256.Sum256([]byte(s.telegramToken))
	h := hmac.New(sha256.New, secretKey[:])
	h.Write([]byte(data.String()))
	return hex.EncodeToString(h.Sum(nil)) == query.Get("hash")
}

// TelegramRedirectHandler handles authentication after Telegram redirect
func (s *authService) TelegramRedirectHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !s.validTelegramHash(query) {
		writeText(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil {
		log.Error().Err(err).Str("userID", query.Get("id")).Msg("failed to parse user id")
		writeText(w, http.StatusBadRequest, "invalid ID")
		return
	}

	token, err := s.createToken(userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create token")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	jdata, jerr := json.Marshal(AuthResponse{Token: token})
	if jerr != nil {
		log.Error().Err(jerr).Msg("failed to marshal json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(jdata); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

// UserCtx checks authorization token and adds user to context
func (s *authService) UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestToken, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || requestToken == "" {
			writeText(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		token, err := jwt.ParseWithClaims(requestToken, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeText(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims := token.Claims.(*JWTClaims)
		if claims.User == nil {
			writeText(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		now := time.Now().Unix()
		if claims.NotBefore > now || claims.ExpiresAt < now {
			writeText(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey, apiUser{ID: *claims.User, Admin: claims.Admin})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) (apiUser, bool) {
	user, ok := ctx.Value(ctxUserKey).(apiUser)
	return user, ok
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
