package main

import (
	"fmt"

	"pngme/pngmeta"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow]Up/Down[white]: select chunk
[yellow]Enter[white]: show chunk
[yellow]t[white]: jump to chunk type
[yellow]Esc/q[white]: back / quit`

func runViewer(fpath string, img *pngmeta.Png, themeName string) error {
	theme := themeByName(themeName)
	tview.Styles = theme.tview
	app := tview.NewApplication()
	pages := tview.NewPages()
	table := makeChunkTable(img, theme.chunks)
	table.SetBorder(true).SetTitle(fmt.Sprintf(" %s: %d chunks ", fpath, len(img.Chunks())))
	position := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(helpText)
	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 10, true).
		AddItem(position, 3, 0, false)
	detail := tview.NewTextView().SetScrollable(true)
	detail.SetBorder(true)
	table.SetSelectedFunc(func(row, column int) {
		i := row - 1
		if i < 0 || i >= len(img.Chunks()) {
			return
		}
		chunk := img.Chunks()[i]
		detail.SetTitle(fmt.Sprintf(" chunk %d: %s ", i, chunk.Type()))
		detail.SetText(chunk.String())
		detail.ScrollToBeginning()
		pages.AddPage("detail", detail, true, true)
	})
	detail.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || event.Rune() == 'q' {
			pages.RemovePage("detail")
			app.SetFocus(table)
			return nil
		}
		return event
	})
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEsc || event.Rune() == 'q':
			app.Stop()
			return nil
		case event.Rune() == 't':
			showTypeSelectionPopup(app, pages, table, img)
			return nil
		}
		return event
	})
	pages.AddPage("main", flex, true, true)
	logger.Debug("starting viewer", "file", fpath, "theme", themeName)
	if err := app.SetRoot(pages, true).EnableMouse(true).Run(); err != nil {
		logger.Error("failed to start tview app", "error", err)
		return err
	}
	return nil
}
