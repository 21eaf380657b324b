// utils/auth.go
package utils

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"want-salon-backend/models"
)

const ContextMasterID = "masterId"

type Claims struct {
	MasterID   int64 `json:"master_id"`
	TelegramID int64 `json:"telegram_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 master tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate JWT token
func (t *TokenIssuer) Generate(masterID, telegramID int64) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	now := t.now()
	claims := Claims{
		MasterID:   masterID,
		TelegramID: telegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.MasterID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// MasterLookup resolves the master a token was issued to.
type MasterLookup interface {
	Get(ctx context.Context, id int64) (*models.Master, error)
}

// Auth middleware
func AuthMiddleware(issuer *TokenIssuer, masters MasterLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			RespondWithAppError(c, Unauthorized("Authorization header missing"))
			return
		}

		if len(tokenString) > 7 && strings.EqualFold(tokenString[0:7], "Bearer ") {
			tokenString = tokenString[7:]
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			RespondWithAppError(c, Unauthorized("Invalid token"))
			return
		}

		master, err := masters.Get(c.Request.Context(), claims.MasterID)
		if err != nil {
			if HasCode(err, CodeNotFound) {
				RespondWithAppError(c, Unauthorized("Master not found"))
				return
			}
			RespondWithAppError(c, err)
			return
		}

		c.Set(ContextMasterID, master.ID)
		c.Next()
	}
}

// RequireSelf runs after AuthMiddleware and only lets through requests whose
// token belongs to the master named by the path parameter.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			RespondWithAppError(c, InvalidInput("Invalid "+param+": "+c.Param(param)))
			return
		}
		if c.GetInt64(ContextMasterID) != id {
			RespondWithAppError(c, Forbidden("Masters can only change their own profile"))
			return
		}
		c.Next()
	}
}
