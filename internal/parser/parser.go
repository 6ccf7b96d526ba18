package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/net/html/charset"

	"github.com/pable/gdl-match-report/internal/model"
)

// ErrMalformed is returned when a file exists but is not well-formed XML.
var ErrMalformed = errors.New("malformed match file")

// node is a generic element. Text is the character data before the first
// child element; text after a child is dropped.
type node struct {
	XMLName  xml.Name
	Text     string
	Children []node
}

func (n *node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child node
			if err := d.DecodeElement(&child, &t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			if len(n.Children) == 0 {
				text.Write(t)
			}
		case xml.EndElement:
			n.Text = text.String()
			return nil
		}
	}
}

// extraction carries the record being filled and per-key occurrence counters.
type extraction struct {
	rec  *model.MatchRecord
	seen map[string]int
}

// next returns how many times key was seen before this call.
func (x *extraction) next(key string) int {
	n := x.seen[key]
	x.seen[key] = n + 1
	return n
}

type rule struct {
	tag   string
	apply func(x *extraction, el node)
}

// rules maps the root's direct child tags to record fields. Tags not listed
// are ignored.
var rules = []rule{
	{"match-id", func(x *extraction, el node) { x.rec.MatchID = el.Text }},
	{"timestamp", func(x *extraction, el node) { x.rec.Timestamp = el.Text }},
	{"startclock", func(x *extraction, el node) { x.rec.StartClock = el.Text }},
	{"sight-of", func(x *extraction, el node) { x.rec.SightOf = el.Text }},
	{"role", func(x *extraction, el node) {
		if x.next("role") == 0 {
			x.rec.Role1 = el.Text
		} else {
			x.rec.Role2 = el.Text
		}
	}},
	{"player", func(x *extraction, el node) {
		if x.next("player") == 0 {
			x.rec.Player1 = el.Text
		} else {
			x.rec.Player2 = el.Text
		}
	}},
	// Every child of scores is a reward, in role order.
	{"scores", func(x *extraction, el node) {
		for _, reward := range el.Children {
			if x.next("scores/reward") == 0 {
				x.rec.Player1Score = reward.Text
			} else {
				x.rec.Player2Score = reward.Text
			}
		}
	}},
	{"history", func(x *extraction, el node) {
		x.rec.NumSteps = len(el.Children)
		x.rec.HasHistory = true
	}},
}

var rulesByTag = func() map[string]rule {
	m := make(map[string]rule, len(rules))
	for _, r := range rules {
		m[r.tag] = r
	}
	return m
}()

// ParseFile reads a finalstate.xml file and returns its record with
// SourcePath and Fingerprint set. A malformed file yields an error wrapping
// ErrMalformed.
func ParseFile(path string) (*model.MatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read match file: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.SourcePath = path
	rec.Fingerprint = Fingerprint(data)
	return rec, nil
}

// Parse extracts a record from the bytes of a finalstate document. Only the
// direct children of the root element are inspected.
func Parse(data []byte) (*model.MatchRecord, error) {
	root, err := decodeRoot(data)
	if err != nil {
		return nil, err
	}

	rec := &model.MatchRecord{}
	x := &extraction{rec: rec, seen: make(map[string]int)}
	for _, child := range root.Children {
		if r, ok := rulesByTag[child.XMLName.Local]; ok {
			r.apply(x, child)
		}
	}
	return rec, nil
}

// Fingerprint returns the hex xxh3-128 digest of data.
func Fingerprint(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return fmt.Sprintf("%x", sum[:])
}

// decodeRoot decodes exactly one root element and rejects anything but
// whitespace, comments and processing instructions after it.
func decodeRoot(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	var root node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no root element", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &root, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, fmt.Errorf("%w: junk after root element <%s>", ErrMalformed, t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: text after root element", ErrMalformed)
			}
		}
	}
}
