package csvexport

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() *printing.Table {
	t := printing.NewTable("Customers",
		printing.Column{Title: "Name"},
		printing.Column{Title: "Total", Kind: printing.KindAmount},
		printing.Column{Title: "Margin", Kind: printing.KindPercent},
		printing.Column{Title: "Date", Kind: printing.KindDate},
	)
	t.AddRow("Müller; AG", decimal.RequireFromString("1234.5"), decimal.RequireFromString("1.1"),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	t.SetFooter("Total", decimal.RequireFromString("1234.5"))
	return t
}

func TestWriter_WriteTable(t *testing.T) {
	t.Run("writes semicolon separated rows", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, Options{})
		require.NoError(t, w.WriteTable(table()))

		r := csv.NewReader(&buf)
		r.Comma = ';'
		records, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"Name", "Total", "Margin", "Date"}, records[0])
		assert.Equal(t, []string{"Müller; AG", "1234.50", "1.1000", "2024-02-01"}, records[1])
		assert.Equal(t, []string{"Total", "1234.50", "", ""}, records[2])
	})

	t.Run("supports a comma separator", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, Options{Separator: ','})
		require.NoError(t, w.WriteTable(table()))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, "Müller; AG", records[1][0])
	})

	t.Run("prefixes a byte order mark once", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf, DefaultOptions())
		doc := printing.NewDocument("Export").AddTable(table()).AddTable(table())
		require.NoError(t, w.WriteDocument(doc))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "\ufeff"))
		assert.Equal(t, 1, strings.Count(out, "\ufeff"))
		assert.Equal(t, 2, strings.Count(out, "Name;Total;Margin;Date"))
	})
}
