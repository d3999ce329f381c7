package security

import (
	"net/http"
	"strings"

	jwtsec "PChat/tools/security"

	"github.com/gin-gonic/gin"
)

// CtxUserKey is where the middleware stores the authenticated username.
const CtxUserKey = "authUser"

type Options struct {
	Header                    string // request header carrying the raw token
	EnableAuthorizationBearer bool   // also accept Authorization: Bearer xxx
	JWT                       jwtsec.Options
}

func DefaultOptions(jwtOpts jwtsec.Options) *Options {
	return &Options{
		Header:                    "token",
		EnableAuthorizationBearer: true,
		JWT:                       jwtOpts,
	}
}

// Middleware verifies the request's JWT and puts the subject into the gin
// context under CtxUserKey.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.Header))

		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtsec.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserKey, claims.Subject())
		c.Next()
	}
}
