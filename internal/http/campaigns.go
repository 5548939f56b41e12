package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/swiftbulk/campaign-gateway/internal/ingest"
	"github.com/swiftbulk/campaign-gateway/internal/model"
	campaignSvc "github.com/swiftbulk/campaign-gateway/internal/service/campaign"
)

// createCampaignHandler accepts a multipart form: name, message,
// sender_id (optional), country, and a "csv" file. Size and mime bounds
// live here, not in the core; ingestion itself is all-or-nothing.
func createCampaignHandler(svc *campaignSvc.Service, maxUploadBytes int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := strings.TrimSpace(c.FormValue("name"))
		message := strings.TrimSpace(c.FormValue("message"))
		country, err := model.ParseCountry(c.FormValue("country"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		var senderID *string
		if v := strings.TrimSpace(c.FormValue("sender_id")); v != "" {
			senderID = &v
		}

		fh, err := c.FormFile("csv")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "csv upload failed"})
		}
		if maxUploadBytes > 0 && fh.Size > maxUploadBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "csv too large"})
		}
		if !acceptableCSV(fh) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "only csv files are allowed"})
		}

		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "csv upload failed"})
		}
		defer f.Close()

		created, err := svc.Create(c.Request().Context(), campaignSvc.CreateInput{
			Name:            name,
			MessageTemplate: message,
			SenderID:        senderID,
			Country:         country,
			CSV:             f,
		})
		if err != nil {
			if userFacing(err) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			log.Errorf("create campaign failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, created)
	}
}

func listCampaignsHandler(svc *campaignSvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaigns, err := svc.List(c.Request().Context())
		if err != nil {
			log.Errorf("list campaigns failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(campaigns),
			"results": campaigns,
		})
	}
}

func getCampaignHandler(svc *campaignSvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := campaignID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad campaign id"})
		}
		campaign, err := svc.Get(c.Request().Context(), id)
		if errors.Is(err, campaignSvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}
		if err != nil {
			log.Errorf("get campaign failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, campaign)
	}
}

func updateCampaignHandler(svc *campaignSvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := campaignID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad campaign id"})
		}

		var body struct {
			Name     *string `json:"name"`
			SenderID *string `json:"sender_id"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request body"})
		}

		updated, err := svc.Update(c.Request().Context(), id, campaignSvc.UpdateInput{
			Name:     body.Name,
			SenderID: body.SenderID,
		})
		switch {
		case errors.Is(err, campaignSvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		case errors.Is(err, campaignSvc.ErrNotEditable):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, campaignSvc.ErrNameRequired):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case err != nil:
			log.Errorf("update campaign failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, updated)
	}
}

// transitionHandler wraps start/resume/stop, which differ only in the
// service call and the status echoed back.
func transitionHandler(op func(ctx context.Context, id int64) error, status string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := campaignID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad campaign id"})
		}
		err = op(c.Request().Context(), id)
		if errors.Is(err, campaignSvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}
		if err != nil {
			log.Errorf("campaign transition failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, map[string]string{"id": strconv.FormatInt(id, 10), "status": status})
	}
}

func campaignID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func userFacing(err error) bool {
	switch {
	case errors.Is(err, campaignSvc.ErrNameRequired),
		errors.Is(err, campaignSvc.ErrMessageRequired),
		errors.Is(err, campaignSvc.ErrMessageTooLong),
		errors.Is(err, ingest.ErrNoValidPhones):
		return true
	}
	// remaining ingest failures (missing columns, malformed rows)
	return strings.Contains(err.Error(), "csv")
}

func acceptableCSV(fh *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return true
	}
	switch fh.Header.Get("Content-Type") {
	case "text/csv", "text/plain", "application/vnd.ms-excel":
		return true
	}
	return false
}
