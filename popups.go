package main

import (
	"fmt"

	"pngme/pngmeta"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const typePopupPage = "typeSelectionPopup"

// typeCounts lists chunk types in order of first appearance, with the
// index of the first chunk and the number of chunks of each type.
func typeCounts(img *pngmeta.Png) (types []string, first map[string]int, count map[string]int) {
	first = make(map[string]int)
	count = make(map[string]int)
	for i, c := range img.Chunks() {
		typ := c.Type().String()
		if _, ok := first[typ]; !ok {
			first[typ] = i
			types = append(types, typ)
		}
		count[typ]++
	}
	return types, first, count
}

func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// showTypeSelectionPopup jumps the table to the first chunk of the picked type.
func showTypeSelectionPopup(app *tview.Application, pages *tview.Pages, table *tview.Table, img *pngmeta.Png) {
	types, first, count := typeCounts(img)
	if len(types) == 0 {
		logger.Warn("no chunks to select from")
		return
	}
	typeListWidget := tview.NewList().ShowSecondaryText(false).
		SetSelectedBackgroundColor(tcell.ColorGray)
	typeListWidget.SetTitle("Jump to chunk type").SetBorder(true)
	row, _ := table.GetSelection()
	for i, typ := range types {
		typeListWidget.AddItem(fmt.Sprintf("%s  %s  x%d", typ, flagsOf(img, first[typ]), count[typ]), "", 0, nil)
		if row-1 >= first[typ] {
			typeListWidget.SetCurrentItem(i)
		}
	}
	typeListWidget.SetSelectedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		table.Select(first[types[index]]+1, 0)
		pages.RemovePage(typePopupPage)
		app.SetFocus(table)
	})
	typeListWidget.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			pages.RemovePage(typePopupPage)
			app.SetFocus(table)
			return nil
		}
		return event
	})
	pages.AddPage(typePopupPage, modal(typeListWidget, 40, len(types)+2), true, true)
	app.SetFocus(typeListWidget)
}

func flagsOf(img *pngmeta.Png, i int) string {
	return flags(img.Chunks()[i].Type())
}
