package format

import (
	"bytes"
	"testing"

	"github.com/outlierql/diffql/table"
	"github.com/stretchr/testify/assert"
)

func TestWriteTableRendersHeaderAndRows(t *testing.T) {
	assert := assert.New(t)

	tab, err := table.New([]*table.Column{
		table.NewStringColumn("state", []string{"CA", "TX"}),
		table.NewDoubleColumn("count", []float64{3, 1}),
	})
	assert.NoError(err)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.NoColor = true
	assert.NoError(WriteTable(&buf, tab, opts))

	out := buf.String()
	assert.Contains(out, "state")
	assert.Contains(out, "count")
	assert.Contains(out, "CA")
	assert.Contains(out, "TX")
}
