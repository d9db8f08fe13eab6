package docx

import (
	"strconv"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

func (r *BodyReader) readTable(el *xmldom.Element) readResult {
	styleID, styleName, styleMsgs := readStyle(el.FirstOrEmpty("w:tblPr"), "w:tblStyle", "Table", r.styles.FindTableStyleByID)

	res := r.readChildren(el)
	rows, mergeMsgs := r.calculateRowSpans(res.elements)

	table := &model.Table{Children: rows, StyleID: styleID, StyleName: styleName}
	return res.withElements(table).withMessages(mergeMsgs...).withMessages(styleMsgs...)
}

func (r *BodyReader) readTableRow(el *xmldom.Element) readResult {
	trPr := el.FirstOrEmpty("w:trPr")
	if trPr.First("w:del") != nil {
		return emptyResult()
	}
	res := r.readChildren(el)
	return res.withElements(&model.TableRow{
		Children: res.elements,
		IsHeader: trPr.First("w:tblHeader") != nil,
	})
}

func (r *BodyReader) readTableCell(el *xmldom.Element) readResult {
	res := r.readChildren(el)
	tcPr := el.FirstOrEmpty("w:tcPr")

	colSpan := 1
	if gridSpan := tcPr.FirstOrEmpty("w:gridSpan").AttrOr("w:val", ""); gridSpan != "" {
		if n, err := strconv.Atoi(gridSpan); err == nil && n > 0 {
			colSpan = n
		}
	}

	cell := &model.TableCell{Children: res.elements, ColSpan: colSpan, RowSpan: 1}
	if vMerge := tcPr.First("w:vMerge"); vMerge != nil {
		val := vMerge.AttrOr("w:val", "")
		r.vMerge[cell] = val == "continue" || val == ""
	}
	return res.withElements(cell)
}

// calculateRowSpans folds vertically merged cells into the rowSpan of the
// cell that starts the merge. Columns are tracked by grid index, which
// advances by each cell's colSpan. If the table contains anything other than
// rows of cells the merge pass is skipped and a warning returned.
func (r *BodyReader) calculateRowSpans(children []model.Element) ([]model.Element, []result.Message) {
	rows := make([]*model.TableRow, 0, len(children))
	for _, c := range children {
		row, ok := c.(*model.TableRow)
		if !ok {
			r.clearVMerge(children)
			return children, []result.Message{result.Warning("unexpected non-row element in table, cell merging may be incorrect")}
		}
		rows = append(rows, row)
	}
	for _, row := range rows {
		for _, c := range row.Children {
			if _, ok := c.(*model.TableCell); !ok {
				r.clearVMerge(children)
				return children, []result.Message{result.Warning("unexpected non-cell element in table row, cell merging may be incorrect")}
			}
		}
	}

	merged := make(map[*model.TableCell]bool)
	columns := make(map[int]*model.TableCell)
	for _, row := range rows {
		cellIndex := 0
		for _, c := range row.Children {
			cell := c.(*model.TableCell)
			if anchor, ok := columns[cellIndex]; ok && r.vMerge[cell] {
				anchor.RowSpan++
				merged[cell] = true
			} else {
				columns[cellIndex] = cell
			}
			delete(r.vMerge, cell)
			cellIndex += cell.ColSpan
		}
	}

	for _, row := range rows {
		kept := make([]model.Element, 0, len(row.Children))
		for _, c := range row.Children {
			if !merged[c.(*model.TableCell)] {
				kept = append(kept, c)
			}
		}
		row.Children = kept
	}
	return children, nil
}

func (r *BodyReader) clearVMerge(rows []model.Element) {
	for _, c := range rows {
		row, ok := c.(*model.TableRow)
		if !ok {
			continue
		}
		for _, cell := range row.Children {
			if tc, ok := cell.(*model.TableCell); ok {
				delete(r.vMerge, tc)
			}
		}
	}
}
