package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

const clinicContextKey = "clinicID"

// RequireRole allows the request through only for the listed roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}

// RequireClinicAccess parses the :clinic_id route param and checks the
// caller's scope covers that clinic. system_admin passes everywhere; a
// caller outside the clinic gets not_owner_or_member.
func RequireClinicAccess(scope *services.ScopeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			c.Abort()
			return
		}

		clinicID, err := uuid.Parse(c.Param("clinic_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clinic id"})
			c.Abort()
			return
		}

		if err := scope.Authorize(c.Request.Context(), user, clinicID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": services.ErrNotOwnerOrMember.Message})
			c.Abort()
			return
		}

		c.Set(clinicContextKey, clinicID)
		c.Next()
	}
}

// ClinicID returns the clinic scope resolved by RequireClinicAccess
func ClinicID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(clinicContextKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
