// Package metaweblog exposes the blog over the MetaWeblog XML-RPC protocol
// so remote publishing clients (Open Live Writer, MarsEdit) can create and
// edit posts and upload media.
package metaweblog

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The wire format most XML-RPC clients send for dateTime.iso8601.
const xmlrpcTimeLayout = "20060102T15:04:05"

// methodCall is a decoded XML-RPC request envelope.
type methodCall struct {
	XMLName    xml.Name `xml:"methodCall"`
	MethodName string   `xml:"methodName"`
	Params     []param  `xml:"params>param"`
}

type param struct {
	Value value `xml:"value"`
}

// value is one XML-RPC value. Exactly one typed field is set; XML-RPC
// treats untyped content, captured in Raw, as a string.
type value struct {
	String   *string  `xml:"string"`
	Int      *int     `xml:"int"`
	I4       *int     `xml:"i4"`
	Boolean  *string  `xml:"boolean"`
	Double   *float64 `xml:"double"`
	DateTime *string  `xml:"dateTime.iso8601"`
	Base64   *string  `xml:"base64"`
	Struct   *xStruct `xml:"struct"`
	Array    *xArray  `xml:"array"`
	Raw      string   `xml:",chardata"`
}

type xStruct struct {
	Members []member `xml:"member"`
}

type member struct {
	Name  string `xml:"name"`
	Value value  `xml:"value"`
}

type xArray struct {
	Values []value `xml:"data>value"`
}

func parseMethodCall(body []byte) (*methodCall, error) {
	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		return nil, fmt.Errorf("parse methodCall: %w", err)
	}
	if call.MethodName == "" {
		return nil, fmt.Errorf("parse methodCall: missing methodName")
	}
	return &call, nil
}

// arg returns the i-th call parameter, or a zero value when absent so
// handlers can read optional trailing parameters without bounds checks.
func (c *methodCall) arg(i int) value {
	if i < 0 || i >= len(c.Params) {
		return value{}
	}
	return c.Params[i].Value
}

func (v value) str() string {
	if v.String != nil {
		return *v.String
	}
	return strings.TrimSpace(v.Raw)
}

func (v value) intVal() int {
	switch {
	case v.Int != nil:
		return *v.Int
	case v.I4 != nil:
		return *v.I4
	default:
		n, _ := strconv.Atoi(strings.TrimSpace(v.Raw))
		return n
	}
}

func (v value) boolVal() bool {
	if v.Boolean != nil {
		s := strings.TrimSpace(*v.Boolean)
		return s == "1" || strings.EqualFold(s, "true")
	}
	return false
}

func (v value) timeVal() time.Time {
	if v.DateTime == nil {
		return time.Time{}
	}
	s := strings.TrimSpace(*v.DateTime)
	for _, layout := range []string{xmlrpcTimeLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// bytesVal decodes a base64 payload. Some clients send binary data as a
// plain string value, so that is accepted too.
func (v value) bytesVal() ([]byte, error) {
	raw := ""
	switch {
	case v.Base64 != nil:
		raw = *v.Base64
	case v.String != nil:
		raw = *v.String
	default:
		raw = v.Raw
	}
	raw = strings.Join(strings.Fields(raw), "")
	return base64.StdEncoding.DecodeString(raw)
}

// structMap flattens struct members into a name lookup.
func (v value) structMap() map[string]value {
	if v.Struct == nil {
		return nil
	}
	m := make(map[string]value, len(v.Struct.Members))
	for _, mem := range v.Struct.Members {
		m[mem.Name] = mem.Value
	}
	return m
}

func (v value) slice() []value {
	if v.Array == nil {
		return nil
	}
	return v.Array.Values
}

// rpcStruct preserves member order when encoding a response struct.
type rpcStruct []rpcMember

type rpcMember struct {
	Name  string
	Value any
}

// marshalResponse encodes a methodResponse carrying a single result value.
func marshalResponse(result any) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param>")
	writeValue(&buf, result)
	buf.WriteString("</param></params></methodResponse>")
	return buf.Bytes()
}

// marshalFault encodes a methodResponse fault.
func marshalFault(code int, message string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault>")
	writeValue(&buf, rpcStruct{
		{Name: "faultCode", Value: code},
		{Name: "faultString", Value: message},
	})
	buf.WriteString("</fault></methodResponse>")
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v any) {
	buf.WriteString("<value>")
	switch val := v.(type) {
	case string:
		buf.WriteString("<string>")
		writeEscaped(buf, val)
		buf.WriteString("</string>")
	case int:
		fmt.Fprintf(buf, "<int>%d</int>", val)
	case bool:
		if val {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case time.Time:
		fmt.Fprintf(buf, "<dateTime.iso8601>%s</dateTime.iso8601>", val.Format(xmlrpcTimeLayout))
	case []byte:
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(val))
		buf.WriteString("</base64>")
	case rpcStruct:
		buf.WriteString("<struct>")
		for _, m := range val {
			buf.WriteString("<member><name>")
			writeEscaped(buf, m.Name)
			buf.WriteString("</name>")
			writeValue(buf, m.Value)
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")
	case []any:
		buf.WriteString("<array><data>")
		for _, item := range val {
			writeValue(buf, item)
		}
		buf.WriteString("</data></array>")
	case []string:
		buf.WriteString("<array><data>")
		for _, item := range val {
			writeValue(buf, item)
		}
		buf.WriteString("</data></array>")
	case []rpcStruct:
		buf.WriteString("<array><data>")
		for _, item := range val {
			writeValue(buf, item)
		}
		buf.WriteString("</data></array>")
	default:
		buf.WriteString("<string>")
		writeEscaped(buf, fmt.Sprint(val))
		buf.WriteString("</string>")
	}
	buf.WriteString("</value>")
}

func writeEscaped(buf *bytes.Buffer, s string) {
	// xml.EscapeText only fails on a failing writer; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}
