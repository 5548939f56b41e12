package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/repository"
	campaignSvc "github.com/swiftbulk/campaign-gateway/internal/service/campaign"
)

var reportHeader = []string{
	"phone", "customer_name", "receiver_name", "country", "rendered_message",
	"status", "provider_message_id", "provider_status", "provider_response",
	"http_code", "attempts", "last_error", "sent_at",
}

// campaignReportHandler streams the per-recipient CSV report.
func campaignReportHandler(svc *campaignSvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := campaignID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad campaign id"})
		}
		recipients, err := svc.Recipients(c.Request().Context(), id)
		if errors.Is(err, campaignSvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}
		if err != nil {
			log.Errorf("campaign report failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/csv")
		res.Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="campaign_%d_report.csv"`, id))
		res.WriteHeader(http.StatusOK)

		w := csv.NewWriter(res)
		if err := w.Write(reportHeader); err != nil {
			return err
		}
		for _, r := range recipients {
			if err := w.Write(reportRow(r)); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
}

func reportRow(r model.Recipient) []string {
	return []string{
		r.Phone,
		r.CustomerName,
		r.ReceiverName,
		r.Country.String(),
		r.RenderedMessage,
		r.Status.String(),
		strDeref(r.ProviderMessageID),
		strDeref(r.ProviderStatus),
		strDeref(r.ProviderResponse),
		intDeref(r.HTTPCode),
		strconv.Itoa(r.Attempts),
		strDeref(r.LastError),
		timeDeref(r.SentAt),
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intDeref(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func timeDeref(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// listDeliveriesHandler serves the ClickHouse-backed delivery log.
func listDeliveriesHandler(deliveries repository.DeliveriesRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaignID, err := strconv.ParseInt(c.QueryParam("campaign_id"), 10, 64)
		if err != nil || campaignID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "campaign_id required"})
		}

		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		status := ""
		if raw := c.QueryParam("status"); raw != "" {
			if s := model.RecipientStatus(raw); s.Valid() {
				status = s.String()
			}
		}

		rows, err := deliveries.List(c.Request().Context(), campaignID, status, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
