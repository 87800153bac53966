package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tropharbour-backend/internal/domains/tour/model"
	"tropharbour-backend/internal/domains/tour/service"
	"tropharbour-backend/internal/shared/request"
	"tropharbour-backend/internal/shared/response"
)

const maxGalleryImages = 3

// =====================================================
// TOUR HANDLER
// =====================================================
type TourHandler struct {
	tourService service.TourService
}

func NewTourHandler(tourService service.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

// AliasTopCheapest rewrites the query into the five best rated, cheapest
// tours before GetAllTours runs.
func AliasTopCheapest() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Set("limit", "5")
		q.Set("sort", "ratingsAverage,-price")
		q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
		c.Request.URL.RawQuery = q.Encode()
		c.Next()
	}
}

// GetAllTours godoc
// @Summary List tours with filter, sort, fields and pagination
// @Tags Tours
// @Router /api/v1/tours [get]
func (h *TourHandler) GetAllTours(c *gin.Context) {
	tours, err := h.tourService.ListTours(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": tours}, len(tours), nil)
}

func (h *TourHandler) GetTour(c *gin.Context) {
	tour, err := h.tourService.GetTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": tour})
}

func (h *TourHandler) CreateTour(c *gin.Context) {
	var req model.CreateTourRequest
	if !request.BindJSON(c, &req) {
		return
	}

	tour, err := h.tourService.CreateTour(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"data": tour})
}

// UpdateTour accepts JSON, or a multipart form with an imageCover file and
// up to three images.
func (h *TourHandler) UpdateTour(c *gin.Context) {
	var req model.UpdateTourRequest
	var uploads service.Uploads

	if request.IsMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			response.Fail(c, request.BindError(err))
			return
		}

		cover, err := request.FormFile(c, "imageCover")
		if err != nil {
			response.Fail(c, err)
			return
		}
		images, err := request.FormFiles(c, "images", maxGalleryImages)
		if err != nil {
			response.Fail(c, err)
			return
		}
		uploads = service.Uploads{Cover: cover, Images: images}
	} else if !request.BindJSON(c, &req) {
		return
	}

	tour, err := h.tourService.UpdateTour(c.Request.Context(), c.Param("id"), req, uploads)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": tour})
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
	if err := h.tourService.DeleteTour(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

// =====================================================
// AGGREGATIONS
// =====================================================

func (h *TourHandler) GetTourStats(c *gin.Context) {
	stats, err := h.tourService.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *TourHandler) GetMonthlyPlan(c *gin.Context) {
	plan, err := h.tourService.MonthlyPlan(c.Request.Context(), c.Param("year"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"plan": plan}, len(plan), nil)
}

// =====================================================
// GEO
// =====================================================

// GetToursWithin handles /tours-within/:distance/center/:latlng/unit/:unit
func (h *TourHandler) GetToursWithin(c *gin.Context) {
	tours, err := h.tourService.ToursWithin(c.Request.Context(), c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, gin.H{"data": tours}, len(tours), nil)
}

// GetDistances handles /distances/:latlng/unit/:unit
func (h *TourHandler) GetDistances(c *gin.Context) {
	distances, err := h.tourService.Distances(c.Request.Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": distances})
}
