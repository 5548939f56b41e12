// Package ingest turns an uploaded CSV into a validated recipient batch.
// The whole parse is synchronous and all-or-nothing: a campaign is only
// created from a fully ingested file.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/phone"
	"github.com/swiftbulk/campaign-gateway/internal/template"
)

const previewLimit = 5

// ErrNoValidPhones is returned when no data row survives validation.
var ErrNoValidPhones = errors.New("no valid phone numbers found")

// Result is the outcome of one ingested file.
type Result struct {
	Recipients []model.Recipient
	Invalid    int
	Previews   []string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// headerAliases maps normalized header spellings to the canonical column
// names required by the contract.
var headerAliases = map[string]string{
	"customer":     "customer_name",
	"customername": "customer_name",
	"receivername": "receiver_name",
}

var requiredColumns = []string{"phone", "customer_name", "receiver_name"}

// normalizeHeader lowercases, collapses non-alphanumeric runs to "_" and
// trims the result, then resolves aliases.
func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = nonAlnum.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if canonical, ok := headerAliases[strings.ReplaceAll(s, "_", "")]; ok {
		return canonical
	}
	return s
}

// ParseCSV reads the upload, validates and normalizes every row for the
// campaign's country, dedupes by normalized phone (first occurrence wins)
// and renders each recipient's message. Rows with a blank phone are
// skipped silently; rows failing validation increment the invalid counter.
func ParseCSV(r io.Reader, messageTemplate string, country model.Country) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoValidPhones
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv is missing required columns: %s", strings.Join(missing, ", "))
	}

	res := &Result{}
	seen := make(map[string]struct{})

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		rawPhone := strings.TrimSpace(field(row, cols["phone"]))
		if rawPhone == "" {
			continue
		}

		normalized := phone.Normalize(rawPhone, country)
		if !phone.Validate(normalized, country) {
			res.Invalid++
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		customerName := strings.TrimSpace(field(row, cols["customer_name"]))
		receiverName := strings.TrimSpace(field(row, cols["receiver_name"]))

		rendered := template.Render(messageTemplate, template.Values{
			CustomerName: customerName,
			ReceiverName: receiverName,
			Phone:        normalized,
		})
		if len(res.Previews) < previewLimit {
			res.Previews = append(res.Previews, rendered)
		}

		res.Recipients = append(res.Recipients, model.Recipient{
			Position:        len(res.Recipients),
			Phone:           normalized,
			CustomerName:    customerName,
			ReceiverName:    receiverName,
			Country:         country,
			RenderedMessage: rendered,
			Status:          model.RecipientPending,
		})
	}

	if len(res.Recipients) == 0 {
		return nil, ErrNoValidPhones
	}
	return res, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
