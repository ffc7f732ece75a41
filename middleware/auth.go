package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/models"
	"github.com/vnkhanh/survey-collector/services"
	"github.com/vnkhanh/survey-collector/utils"
)

const (
	CtxUser       = "user"        // models.User đã xác thực
	CtxUserPublic = "user_public" // thông tin user an toàn để render

	// Cookie giữ access token cho các trang HTML.
	AuthCookie = "access_token"
)

// bearerToken lấy token từ Authorization: Bearer <token>, nếu không có thì từ cookie.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if v, err := c.Cookie(AuthCookie); err == nil {
		return v
	}
	return ""
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(CtxUser, *user)
	c.Set(CtxUserPublic, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// AuthJWT kiểm tra access token, lấy user và inject vào context.
func AuthJWT(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerToken(c)
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}

		user, err := auth.UserFromAccessToken(c.Request.Context(), rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth: có token hợp lệ thì set user, không thì vẫn cho qua như ẩn danh.
func OptionalAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rawToken := bearerToken(c); rawToken != "" {
			if user, err := auth.UserFromAccessToken(c.Request.Context(), rawToken); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireLogin dùng cho trang HTML: chưa đăng nhập thì chuyển về /login?next=...
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == 0 {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser trả user đã được AuthJWT/OptionalAuth set.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// CurrentUserID: 0 nghĩa là ẩn danh.
func CurrentUserID(c *gin.Context) uint {
	u, ok := CurrentUser(c)
	if !ok {
		return 0
	}
	return u.ID
}

func SetAuthCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookie, token, int(utils.AccessTokenTTL.Seconds()), "/", "", secure, true)
}

func ClearAuthCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookie, "", -1, "/", "", secure, true)
}
