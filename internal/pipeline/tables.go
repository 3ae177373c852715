package pipeline

import (
	"fmt"

	"dochub/internal/domain"
	"dochub/internal/port"
)

// Uniform table borders: 0.5pt (eighth-points) in black.
const (
	tableBorderSize  = 4
	tableBorderColor = "000000"
)

// normalizeTables applies uniform shading and borders. Single-cell tables
// are callout boxes and only receive a fill; with smart detection enabled,
// tables that look like layout containers rather than data are left alone.
func normalizeTables(ex *execution) {
	shading := ex.opts.TableShading
	smart := ex.opts.Operations.SmartTableDetect
	for i, t := range ex.doc.Tables() {
		if t.IsSingleCell() {
			if shading.SingleCellFill != "" {
				t.ShadeAll(shading.SingleCellFill)
				ex.record(domain.ChangeRecord{
					Category:    domain.ChangeTable,
					Description: fmt.Sprintf("callout box %d shaded", i+1),
				})
			}
			continue
		}
		if smart && !looksLikeData(t) {
			continue
		}
		if shading.HeaderFill != "" {
			t.ShadeHeaderRow(shading.HeaderFill)
		}
		if shading.AltRowFill != "" {
			t.ShadeAltRows(shading.AltRowFill)
		}
		t.SetUniformBorders(tableBorderSize, tableBorderColor)
		ex.record(domain.ChangeRecord{
			Category:    domain.ChangeTable,
			Description: fmt.Sprintf("table %d formatted (%dx%d)", i+1, t.Rows(), t.Columns()),
		})
	}
}

// looksLikeData treats a table with at least two rows and two columns as
// tabular data; anything flatter is assumed to be page layout.
func looksLikeData(t port.Table) bool {
	return t.Rows() >= 2 && t.Columns() >= 2
}
