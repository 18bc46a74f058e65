package importer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildTemplate(t *testing.T) {
	data, err := BuildTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TemplateSheet}, f.GetSheetList())

	rows, err := f.GetRows(TemplateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"User Name", "Customer Name", "Tax Code", "Email", "Phone Number", "Order Number", "Address"}, rows[0])

	width, err := f.GetColWidth(TemplateSheet, "G")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestTemplateRoundTrip(t *testing.T) {
	xlsx, err := BuildTemplate()
	require.NoError(t, err)

	rows, err := NewParser(0, 0).Parse(context.Background(), xlsx, MIMETypeXLSX)
	require.NoError(t, err)
	assert.Empty(t, rows)

	csvData, err := BuildCSVTemplate()
	require.NoError(t, err)

	rows, err = NewParser(0, 0).Parse(context.Background(), csvData, MIMETypeCSV)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
