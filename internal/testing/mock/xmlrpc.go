package mock

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// decodeMethodCall reads an XML-RPC methodCall. Values decode to the same
// Go types a client-side decoder produces: int64, float64, bool, string,
// nil, []interface{} and map[string]interface{}.
func decodeMethodCall(r io.Reader) (string, []interface{}, error) {
	d := xml.NewDecoder(r)
	var method string
	params := []interface{}{}

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "methodName":
			if method, err = readText(d); err != nil {
				return "", nil, err
			}
		case "value":
			v, err := decodeValue(d)
			if err != nil {
				return "", nil, err
			}
			params = append(params, v)
		}
	}

	if method == "" {
		return "", nil, fmt.Errorf("missing methodName")
	}
	return method, params, nil
}

// decodeValue decodes the content of a <value> element whose start tag has
// already been consumed.
func decodeValue(d *xml.Decoder) (interface{}, error) {
	var text strings.Builder
	var result interface{}
	typed := false

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			typed = true
			if result, err = decodeTyped(d, t.Name.Local); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if !typed {
				return text.String(), nil
			}
			return result, nil
		}
	}
}

func decodeTyped(d *xml.Decoder, name string) (interface{}, error) {
	switch name {
	case "array":
		return decodeArray(d)
	case "struct":
		return decodeStruct(d)
	case "nil":
		return nil, d.Skip()
	}

	s, err := readText(d)
	if err != nil {
		return nil, err
	}
	switch name {
	case "int", "i4", "i8":
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case "boolean":
		return strings.TrimSpace(s) == "1", nil
	case "double":
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	default:
		return s, nil
	}
}

func decodeArray(d *xml.Decoder) ([]interface{}, error) {
	items := []interface{}{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				v, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
		case xml.EndElement:
			if t.Name.Local == "array" {
				return items, nil
			}
		}
	}
}

func decodeStruct(d *xml.Decoder) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	var name string
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if name, err = readText(d); err != nil {
					return nil, err
				}
			case "value":
				v, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				m[name] = v
			}
		case xml.EndElement:
			if t.Name.Local == "struct" {
				return m, nil
			}
		}
	}
}

func readText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if err := d.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

// encodeResponse renders a successful methodResponse.
func encodeResponse(v interface{}) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0"?><methodResponse><params><param>`)
	encodeValue(&b, v)
	b.WriteString(`</param></params></methodResponse>`)
	return b.Bytes()
}

// encodeFault renders a fault methodResponse.
func encodeFault(code int, message string) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0"?><methodResponse><fault>`)
	encodeValue(&b, map[string]interface{}{"faultCode": code, "faultString": message})
	b.WriteString(`</fault></methodResponse>`)
	return b.Bytes()
}

func encodeValue(b *bytes.Buffer, v interface{}) {
	b.WriteString("<value>")
	switch x := v.(type) {
	case nil:
		// the backend sends false for empty values
		b.WriteString("<boolean>0</boolean>")
	case bool:
		if x {
			b.WriteString("<boolean>1</boolean>")
		} else {
			b.WriteString("<boolean>0</boolean>")
		}
	case int:
		fmt.Fprintf(b, "<int>%d</int>", x)
	case int64:
		fmt.Fprintf(b, "<int>%d</int>", x)
	case float64:
		fmt.Fprintf(b, "<double>%s</double>", strconv.FormatFloat(x, 'f', -1, 64))
	case string:
		b.WriteString("<string>")
		_ = xml.EscapeText(b, []byte(x))
		b.WriteString("</string>")
	case []interface{}:
		b.WriteString("<array><data>")
		for _, item := range x {
			encodeValue(b, item)
		}
		b.WriteString("</data></array>")
	case []int:
		b.WriteString("<array><data>")
		for _, n := range x {
			fmt.Fprintf(b, "<value><int>%d</int></value>", n)
		}
		b.WriteString("</data></array>")
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("<struct>")
		for _, k := range keys {
			b.WriteString("<member><name>")
			_ = xml.EscapeText(b, []byte(k))
			b.WriteString("</name>")
			encodeValue(b, x[k])
			b.WriteString("</member>")
		}
		b.WriteString("</struct>")
	default:
		b.WriteString("<string>")
		_ = xml.EscapeText(b, []byte(fmt.Sprintf("%v", x)))
		b.WriteString("</string>")
	}
	b.WriteString("</value>")
}
