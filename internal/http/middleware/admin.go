// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the admin gate. Admin routes are protected by a
// demo-grade header check: the request must carry X-ADMIN with the exact
// value "1". The decision itself is a pure function over the request headers
// (IsAdmin) so it can be tested without a running server; AdminOnly wraps it
// as Gin middleware with a uniform denial response.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminHeader is the header carrying the admin assertion.
const adminHeader = "X-ADMIN"

// IsAdmin reports whether h asserts admin access. Only the exact value "1"
// qualifies; a missing header, an empty value, "0", "true", or any other
// value is denied. Pure function of the headers.
func IsAdmin(h http.Header) bool {
	return h.Get(adminHeader) == "1"
}

// AdminOnly returns a Gin middleware that rejects non-admin requests with a
// uniform 403. The denial body is identical for a missing and a wrong header
// so the response does not leak which case occurred.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c.Request.Header) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "forbidden",
			"message":    "admin access required",
		})
	}
}
