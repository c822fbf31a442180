package core

import (
	"sort"
	"strings"
)

// HTTP is a best-effort parse of an HTTP/1.x request or response head.
type HTTP struct {
	Base
	IsRequest bool

	// Request line, set when IsRequest.
	Method string
	Target string

	// Status line, set when !IsRequest.
	StatusCode string
	Reason     string

	// Version is set for both, e.g. "HTTP/1.1".
	Version string

	// Headers is keyed by lowercased name; the last duplicate wins.
	Headers map[string]string

	// Body is everything after the blank line. It aliases the decoded buffer.
	Body []byte
}

func (*HTTP) Kind() Kind   { return KindHTTP }
func (*HTTP) Name() string { return KindHTTP.String() }

// Header looks up a header case-insensitively. Missing headers yield "".
func (h *HTTP) Header(name string) string {
	return h.Headers[strings.ToLower(name)]
}

// ContentType returns the content-type header.
func (h *HTTP) ContentType() string { return h.Header("content-type") }

// Host returns the host header.
func (h *HTTP) Host() string { return h.Header("host") }

// Fields implements Layer. Headers are listed in name order.
func (h *HTTP) Fields() []Field {
	var fields []Field
	if h.IsRequest {
		fields = []Field{
			{Name: "Method", Value: h.Method},
			{Name: "Target", Value: h.Target},
			{Name: "Version", Value: h.Version},
		}
	} else {
		fields = []Field{
			{Name: "Version", Value: h.Version},
			{Name: "Status Code", Value: h.StatusCode},
			{Name: "Reason", Value: h.Reason},
		}
	}
	names := make([]string, 0, len(h.Headers))
	for name := range h.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields = append(fields, Field{Name: name, Value: h.Headers[name]})
	}
	fields = append(fields, Field{Name: "Body", Value: dec(uint32(len(h.Body))) + " bytes"})
	return fields
}
