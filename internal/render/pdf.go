package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"goban/internal/domain/goban"
)

const (
	pdfMargin = 20.0
	pdfBoard  = 170.0 // mm between the outer lines on A4
)

// PDF writes snap as a one page A4 diagram with the title above the board.
func PDF(w io.Writer, snap goban.Snapshot, title string) error {
	cell := pdfBoard / float64(max(snap.Size-1, 1))
	l := Layout{Size: snap.Size, Left: pdfMargin, Top: pdfMargin + 20, Cell: cell}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 12)
	pdf.Cell(40, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Courier", "", 8)
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	for i := 0; i < snap.Size; i++ {
		x0, y0 := l.Pixel(goban.Pt(0, i))
		x1, y1 := l.Pixel(goban.Pt(snap.Size-1, i))
		pdf.Line(x0, y0, x1, y1)
		pdf.Text(x0-6, y0+1, Label(i))

		x0, y0 = l.Pixel(goban.Pt(i, 0))
		x1, y1 = l.Pixel(goban.Pt(i, snap.Size-1))
		pdf.Line(x0, y0, x1, y1)
		pdf.Text(x0-1, y0-4, Label(i))
	}

	pdf.SetFillColor(0, 0, 0)
	for _, p := range Hoshi(snap.Size) {
		x, y := l.Pixel(p)
		pdf.Circle(x, y, cell/10, "F")
	}

	radius := cell * 0.47
	for _, s := range snap.Stones {
		x, y := l.Pixel(s.Point)
		if s.Color == goban.Black {
			pdf.SetFillColor(0, 0, 0)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.Circle(x, y, radius, "FD")
	}

	_, bottom := l.Pixel(goban.Pt(0, snap.Size-1))
	pdf.SetFont("Courier", "", 10)
	pdf.Text(pdfMargin, bottom+12, fmt.Sprintf("move %d, %s to play, prisoners black %d white %d",
		snap.MoveNumber, snap.ToPlay, snap.Captures[goban.Black], snap.Captures[goban.White]))

	return pdf.Output(w)
}
