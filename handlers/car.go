package handlers

import (
	"net/http"

	"rentx/services/car"
	"rentx/utils"

	"github.com/gin-gonic/gin"
)

// ListAvailableCarsHandler serves the cached availability listing.
func ListAvailableCarsHandler(svc car.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := svc.GetAvailableCars(c.Request.Context())
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to list cars", err.Error())
			return
		}
		c.JSON(http.StatusOK, cars)
	}
}

// GetCarHandler returns one car by id.
func GetCarHandler(svc car.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := svc.GetCar(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "car not found"})
			return
		}
		c.JSON(http.StatusOK, found)
	}
}
