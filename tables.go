package main

import (
	"fmt"
	"strings"

	"pngme/pngmeta"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var chunkTableHeader = []string{"#", "type", "flags", "length", "crc", "data"}

const previewWidth = 48

func makeChunkTable(img *pngmeta.Png, colors chunkColors) *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	for c, title := range chunkTableHeader {
		table.SetCell(0, c,
			tview.NewTableCell(title).
				SetTextColor(tcell.ColorYellow).
				SetAttributes(tcell.AttrBold).
				SetSelectable(false))
	}
	for i, chunk := range img.Chunks() {
		r := i + 1
		color := colors.forType(chunk.Type())
		cells := []string{
			fmt.Sprint(i),
			chunk.Type().String(),
			flags(chunk.Type()),
			humanize.Bytes(uint64(chunk.Length())),
			fmt.Sprintf("%08x", chunk.CRC()),
			preview(chunk),
		}
		for c, text := range cells {
			cell := tview.NewTableCell(tview.Escape(text)).SetTextColor(color)
			if c == len(cells)-1 {
				cell.SetExpansion(1)
			}
			table.SetCell(r, c, cell)
		}
	}
	return table
}

// preview is a single line for the data column.
func preview(chunk pngmeta.Chunk) string {
	text := []rune(strings.Join(strings.Fields(chunk.Preview()), " "))
	if len(text) > previewWidth {
		return string(text[:previewWidth]) + "..."
	}
	return string(text)
}
