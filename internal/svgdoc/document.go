// Package svgdoc loads the path elements of an SVG file and turns path data
// into polylines a raster surface can draw.
package svgdoc

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/mitchellh/go-homedir"
)

// ErrNoSVG is returned when the document has no <svg> root.
var ErrNoSVG = errors.New("svgdoc: no svg element found")

// Box is a viewBox: origin plus size.
type Box struct {
	X, Y, W, H float64
}

func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// Document is the drawable subset of an SVG file.
type Document struct {
	ViewBox Box
	// Paths holds the d attribute of every <path>, in document order. A path
	// without data keeps its slot as "" so indices match element order.
	Paths []string
}

// Load parses an SVG document from r.
func Load(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("svgdoc: parse: %w", err)
	}
	return fromTree(doc)
}

// LoadFile parses the SVG file at path; a leading ~ is expanded.
func LoadFile(path string) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("svgdoc: expand %q: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("svgdoc: %w", err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	return d, nil
}

// LoadFiles loads every path it can. The returned error joins the
// failures; the documents that did load are returned alongside it.
func LoadFiles(paths []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(paths))
	var errs []error
	for _, p := range paths {
		d, err := LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, d)
	}
	return docs, errors.Join(errs...)
}

func fromTree(doc *etree.Document) (*Document, error) {
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, ErrNoSVG
	}

	d := &Document{}
	for _, el := range doc.FindElements("//path") {
		d.Paths = append(d.Paths, strings.TrimSpace(el.SelectAttrValue("d", "")))
	}

	d.ViewBox = parseViewBox(root.SelectAttrValue("viewBox", ""))
	if d.ViewBox.Empty() {
		w := parseLength(root.SelectAttrValue("width", ""))
		h := parseLength(root.SelectAttrValue("height", ""))
		d.ViewBox = Box{W: w, H: h}
	}
	if d.ViewBox.Empty() {
		d.ViewBox = d.Bounds()
	}
	return d, nil
}

func parseViewBox(s string) Box {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return Box{}
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Box{}
		}
		v[i] = n
	}
	return Box{X: v[0], Y: v[1], W: v[2], H: v[3]}
}

// parseLength reads "120", "120px" or "120.5pt" as a plain number; percentages
// and other relative units yield 0.
func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimRightFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' })
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

// Bounds returns the bounding box of all flattened paths.
func (d *Document) Bounds() Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range d.Paths {
		for _, sp := range Flatten(p) {
			for _, pt := range sp.Points {
				minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
				minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
			}
		}
	}
	if math.IsInf(minX, 1) {
		return Box{}
	}
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
