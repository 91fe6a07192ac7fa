package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"CityPulse/internal/domain"
)

const (
	adviceFailedMsg   = "failed to get travel advice, please try again"
	describeFailedMsg = "failed to describe image, please try again"
)

type describeRequest struct {
	ImageDataURI string `json:"imageDataUri"`
}

// handleAdvice returns route analysis and predictive alerts for a trip.
// POST /api/v1/advice
func (s *Server) handleAdvice(c *gin.Context) {
	var trip domain.TripRequest
	if err := c.ShouldBindJSON(&trip); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	advice, err := s.services.Travel.GetTravelAdvice(ctx, trip)
	if err != nil {
		s.writeError(c, err, adviceFailedMsg)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": advice})
}

// handleConditions returns a freshly aggregated snapshot.
// GET /api/v1/conditions
func (s *Server) handleConditions(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	snapshot := s.services.Travel.Conditions(ctx)
	c.JSON(http.StatusOK, gin.H{
		"data": snapshot,
		"meta": gin.H{
			"count":   len(snapshot.Signals),
			"weather": snapshot.Weather != nil,
		},
	})
}

// handleDescribeIssue accepts a multipart "image" file or a JSON data URI.
// POST /api/v1/issues/describe
func (s *Server) handleDescribeIssue(c *gin.Context) {
	img, err := readImage(c)
	if err != nil {
		s.writeError(c, err, describeFailedMsg)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	description, err := s.services.Issues.DescribeIssue(ctx, img)
	if err != nil {
		s.writeError(c, err, describeFailedMsg)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": description})
}

// handleSubmitReport files a civic report.
// POST /api/v1/reports
func (s *Server) handleSubmitReport(c *gin.Context) {
	var in domain.NewReport
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	report, err := s.services.Reports.Submit(ctx, in)
	if err != nil {
		s.writeError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": report})
}

// handleReportHistory lists a user's reports, newest first.
// GET /api/v1/reports?user=<id>&limit=<n>
func (s *Server) handleReportHistory(c *gin.Context) {
	user := c.Query("user")
	if strings.TrimSpace(user) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	reports, err := s.services.Reports.History(ctx, user, limit)
	if err != nil {
		s.writeError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": reports,
		"meta": gin.H{"count": len(reports)},
	})
}

func readImage(c *gin.Context) (domain.Image, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			if tooLarge, ok := asMaxBytes(err); ok {
				return domain.Image{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, tooLarge.Limit)
			}
			return domain.Image{}, fmt.Errorf("%w: image file is required", domain.ErrValidation)
		}
		file, err := header.Open()
		if err != nil {
			return domain.Image{}, fmt.Errorf("open upload: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return domain.Image{}, fmt.Errorf("read upload: %w", err)
		}
		return domain.NewImage(data)
	}

	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge, ok := asMaxBytes(err); ok {
			return domain.Image{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, tooLarge.Limit)
		}
		return domain.Image{}, fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	if req.ImageDataURI == "" {
		return domain.Image{}, fmt.Errorf("%w: imageDataUri is required", domain.ErrValidation)
	}
	return domain.ParseDataURI(req.ImageDataURI)
}

func asMaxBytes(err error) (*http.MaxBytesError, bool) {
	var tooLarge *http.MaxBytesError
	ok := errors.As(err, &tooLarge)
	return tooLarge, ok
}
