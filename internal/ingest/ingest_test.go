package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbulk/campaign-gateway/internal/model"
	"github.com/swiftbulk/campaign-gateway/internal/template"
)

const tmpl = "Hi {{customer_name}}, msg for {{receiver_name}} at {{phone}}"

func TestParseCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"phone,customer_name,receiver_name",
		"5551234567,Acme,Jo",
		"5559876543,Globex,Sam",
	}, "\n")

	res, err := ParseCSV(strings.NewReader(csvData), tmpl, model.CountryCA)
	require.NoError(t, err)

	require.Len(t, res.Recipients, 2)
	assert.Equal(t, 0, res.Invalid)

	first := res.Recipients[0]
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, "15551234567", first.Phone)
	assert.Equal(t, "Acme", first.CustomerName)
	assert.Equal(t, "Jo", first.ReceiverName)
	assert.Equal(t, model.CountryCA, first.Country)
	assert.Equal(t, model.RecipientPending, first.Status)
	assert.Equal(t, "Hi Acme, msg for Jo at 15551234567", first.RenderedMessage)

	assert.Equal(t, 1, res.Recipients[1].Position)
}

func TestParseCSVHeaderAliases(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"canonical", "phone,customer_name,receiver_name"},
		{"short customer", "Phone,Customer,Receiver_Name"},
		{"camel case no separators", "PHONE,CustomerName,ReceiverName"},
		{"space separated", "Phone, Customer Name, Receiver Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.header + "\n5551234567,Acme,Jo\n"
			res, err := ParseCSV(strings.NewReader(data), tmpl, model.CountryCA)
			require.NoError(t, err)
			require.Len(t, res.Recipients, 1)
			assert.Equal(t, "Acme", res.Recipients[0].CustomerName)
			assert.Equal(t, "Jo", res.Recipients[0].ReceiverName)
		})
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	data := "phone,city\n5551234567,Toronto\n"
	_, err := ParseCSV(strings.NewReader(data), tmpl, model.CountryCA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_name")
	assert.Contains(t, err.Error(), "receiver_name")
	assert.NotContains(t, err.Error(), "phone,")
}

func TestParseCSVDedupeFirstWins(t *testing.T) {
	// Same number in two spellings: raw and normalized.
	data := strings.Join([]string{
		"phone,customer_name,receiver_name",
		"5551234567,First,Jo",
		"15551234567,Second,Sam",
	}, "\n")

	res, err := ParseCSV(strings.NewReader(data), tmpl, model.CountryCA)
	require.NoError(t, err)
	require.Len(t, res.Recipients, 1)
	assert.Equal(t, "First", res.Recipients[0].CustomerName)
	assert.Equal(t, 0, res.Invalid)
}

func TestParseCSVInvalidAndBlankRows(t *testing.T) {
	data := strings.Join([]string{
		"phone,customer_name,receiver_name",
		"5551234567,Acme,Jo",
		"12345,Bad,Number",   // fails validation
		",Blank,Phone",       // skipped silently
		"555123,Short,Again", // fails validation
	}, "\n")

	res, err := ParseCSV(strings.NewReader(data), tmpl, model.CountryCA)
	require.NoError(t, err)
	assert.Len(t, res.Recipients, 1)
	assert.Equal(t, 2, res.Invalid)
}

func TestParseCSVPreviewCap(t *testing.T) {
	rows := []string{"phone,customer_name,receiver_name"}
	numbers := []string{
		"5551230001", "5551230002", "5551230003", "5551230004",
		"5551230005", "5551230006", "5551230007",
	}
	for _, n := range numbers {
		rows = append(rows, n+",Acme,Jo")
	}

	res, err := ParseCSV(strings.NewReader(strings.Join(rows, "\n")), tmpl, model.CountryCA)
	require.NoError(t, err)
	assert.Len(t, res.Recipients, len(numbers))
	assert.Len(t, res.Previews, 5)
	assert.Equal(t, res.Recipients[0].RenderedMessage, res.Previews[0])
}

func TestParseCSVNoValidPhones(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"header only", "phone,customer_name,receiver_name\n"},
		{"all rows invalid", "phone,customer_name,receiver_name\n123,Bad,Row\n"},
		{"all rows blank", "phone,customer_name,receiver_name\n,Blank,Row\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.data), tmpl, model.CountryCA)
			assert.ErrorIs(t, err, ErrNoValidPhones)
		})
	}
}

// Oversize renders are not an ingestion failure: the row lands in the
// store as pending with the full render intact, and the send worker
// marks it failed later.
func TestParseCSVKeepsOversizeRenders(t *testing.T) {
	long := strings.Repeat("x", 500)
	data := "phone,customer_name,receiver_name\n5551234567," + long + ",Jo\n"

	res, err := ParseCSV(strings.NewReader(data), tmpl, model.CountryCA)
	require.NoError(t, err)
	require.Len(t, res.Recipients, 1)

	rec := res.Recipients[0]
	assert.Equal(t, model.RecipientPending, rec.Status)
	assert.Greater(t, len(rec.RenderedMessage), template.MaxMessageLen)
	assert.Contains(t, rec.RenderedMessage, long)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "customer_name", normalizeHeader("  Customer Name "))
	assert.Equal(t, "customer_name", normalizeHeader("customer"))
	assert.Equal(t, "receiver_name", normalizeHeader("ReceiverName"))
	assert.Equal(t, "phone", normalizeHeader("PHONE"))
	assert.Equal(t, "some_other_col", normalizeHeader("Some Other-Col"))
}
