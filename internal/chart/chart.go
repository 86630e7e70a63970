// Package chart renders small PNG bar charts for the online graphs.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ErrNoData   = errors.New("chart: no data")
	ErrMismatch = errors.New("chart: labels and values differ in length")
)

const (
	Width  = 900
	Height = 360

	marginLeft   = 48
	marginRight  = 16
	marginTop    = 36
	marginBottom = 36

	// minTop keeps a flat chart readable.
	minTop    = 5
	gridLines = 5
)

var (
	Background = color.RGBA{0x2b, 0x2d, 0x31, 0xff}
	BarColor   = color.RGBA{0x58, 0x65, 0xf2, 0xff}
	gridColor  = color.RGBA{0x40, 0x44, 0x4b, 0xff}
	textColor  = color.RGBA{0xdc, 0xdd, 0xde, 0xff}
)

// Bars draws one bar per value. Labels are thinned out when they would
// overlap. basicfont only covers Latin glyphs.
func Bars(title string, labels []string, values []int) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%w: %d labels, %d values", ErrMismatch, len(labels), len(values))
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	face := basicfont.Face7x13

	step, top := YScale(values)
	plotW := Width - marginLeft - marginRight
	plotH := Height - marginTop - marginBottom
	baseY := marginTop + plotH

	for v := 0; v <= top; v += step {
		y := baseY - v*plotH/top
		fillRect(img, marginLeft, y, marginLeft+plotW, y+1, gridColor)
		label := strconv.Itoa(v)
		drawText(img, face, marginLeft-6-textWidth(face, label), y+4, label)
	}

	slot := float64(plotW) / float64(len(values))
	barW := max(1, int(slot*0.7))
	stride := labelStride(face, labels, slot)
	for i, v := range values {
		x0 := marginLeft + int(slot*float64(i)) + (int(slot)-barW)/2
		h := max(v, 0) * plotH / top
		fillRect(img, x0, baseY-h, x0+barW, baseY, BarColor)
		if i%stride == 0 {
			lw := textWidth(face, labels[i])
			drawText(img, face, x0+barW/2-lw/2, baseY+18, labels[i])
		}
	}
	drawText(img, face, marginLeft, marginTop-14, title)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// YScale returns the grid step and the axis top. The top is at least
// minTop and always a multiple of the step.
func YScale(values []int) (step, top int) {
	peak := minTop
	for _, v := range values {
		peak = max(peak, v)
	}
	step = (peak + gridLines - 1) / gridLines
	return step, step * gridLines
}

func labelStride(face font.Face, labels []string, slot float64) int {
	widest := 0
	for _, l := range labels {
		widest = max(widest, textWidth(face, l))
	}
	stride := 1
	for float64(stride)*slot < float64(widest+6) {
		stride++
	}
	return stride
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func drawText(img *image.RGBA, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
