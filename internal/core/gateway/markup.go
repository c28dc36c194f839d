package gateway

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var errEmptyResponse = errors.New("response has no root element")

// ParseResponse reads a tag-per-field document such as
//
//	<root><trade_state>0</trade_state><sign>...</sign></root>
//
// and stores every child of the root element in set. The document's declared
// charset is honoured. Nothing is written to set unless the whole document parses.
func ParseResponse(body []byte, set *ParameterSet, ch Channel) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader

	var (
		fields []Parameter
		depth  int
		name   string
		text   strings.Builder
		rooted bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				rooted = true
			}
			if depth == 2 {
				name = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth >= 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 {
				fields = append(fields, Parameter{Name: name, Value: text.String(), Channel: ch})
			}
			depth--
		}
	}
	if !rooted {
		return fmt.Errorf("parse response: %w", errEmptyResponse)
	}

	for _, p := range fields {
		set.Set(p.Name, p.Value, p.Channel)
	}
	return nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
