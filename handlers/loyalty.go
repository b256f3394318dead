package handlers

import (
	"net/http"

	"rentx/services/loyalty"
	"rentx/utils"

	"github.com/gin-gonic/gin"
)

// LoyaltyStatusHandler reports the caller's current tier and the booking
// count that produced it.
func LoyaltyStatusHandler(svc *loyalty.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		count, err := svc.QualifyingBookings(c.Request.Context(), userID)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to load loyalty status", err.Error())
			return
		}
		tier, err := svc.TierFor(c.Request.Context(), userID)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to load loyalty status", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tier":               tier,
			"qualifyingBookings": count,
		})
	}
}
