// internal/service/warranty/interfaces/auth.go
package interfaces

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 签发的令牌按主体分两类，管理端接口和门店接口互不通用。
const (
	roleAdmin = "admin"
	roleShop  = "shop"

	tokenTTL = 24 * time.Hour
)

type contextKey string

const shopIDKey contextKey = "shopID"

// Claims 是 JWT 载荷：Type 标识主体类别，门店令牌额外携带 ShopID。
type Claims struct {
	Type   string `json:"type"`
	ShopID string `json:"shopId,omitempty"`
	jwt.RegisteredClaims
}

// Auth 负责令牌的签发与校验。
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// IssueAdminToken 为管理员签发 24 小时有效的令牌。
func (a *Auth) IssueAdminToken(username string) (string, error) {
	return a.issue(Claims{
		Type: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

// IssueShopToken 为门店签发令牌，ShopID 进入载荷供激活接口使用。
func (a *Auth) IssueShopToken(shopID string) (string, error) {
	return a.issue(Claims{
		Type:   roleShop,
		ShopID: shopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shopID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (a *Auth) issue(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin 只放行管理员令牌。
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.require(roleAdmin, next)
}

// RequireShop 只放行门店令牌，并把 ShopID 放进请求上下文。
func (a *Auth) RequireShop(next http.Handler) http.Handler {
	return a.require(roleShop, next)
}

func (a *Auth) require(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := a.parse(tokenString)
		if err != nil || claims.Type != role {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		if claims.Type == roleShop {
			ctx = context.WithValue(ctx, shopIDKey, claims.ShopID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shopIDFromContext 取出门店令牌写入的 ShopID。
func shopIDFromContext(ctx context.Context) string {
	shopID, _ := ctx.Value(shopIDKey).(string)
	return shopID
}
