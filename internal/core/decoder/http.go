package decoder

import (
	"bytes"
	"strings"

	"firestige.xyz/layerspy/internal/core"
)

var crlf = []byte("\r\n")

// decodeHTTP parses an HTTP/1.x message head from a TCP payload. It fails
// unless the payload holds a CRLF-terminated start line of at least three
// tokens. The whole payload is consumed on success; no Content-Length or
// chunked accounting is done.
func decodeHTTP(v *view) (core.Layer, error) {
	data := v.Bytes()

	lineEnd := bytes.Index(data, crlf)
	if lineEnd < 0 {
		return nil, core.ErrMalformed
	}
	first, second, rest, ok := splitStartLine(string(data[:lineEnd]))
	if !ok {
		return nil, core.ErrMalformed
	}

	h := &core.HTTP{Headers: make(map[string]string)}
	if strings.HasPrefix(first, "HTTP/") {
		h.Version = first
		h.StatusCode = second
		h.Reason = rest
	} else {
		h.IsRequest = true
		h.Method = first
		h.Target = second
		h.Version, _ = nextToken(rest)
	}

	// Header lines run until a blank line or the end of the payload
	bodyStart := len(data)
	pos := lineEnd + len(crlf)
	for pos < len(data) {
		line := data[pos:]
		next := len(data)
		if end := bytes.Index(line, crlf); end >= 0 {
			line = line[:end]
			next = pos + end + len(crlf)
		}
		pos = next
		if len(line) == 0 {
			bodyStart = pos
			break
		}
		name, value, found := strings.Cut(string(line), ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		h.Headers[name] = strings.TrimSpace(value)
	}

	h.Body = data[bodyStart:]
	h.SetContents(v.header(bodyStart))

	if err := v.Consume(len(data)); err != nil {
		return nil, err
	}
	return h, nil
}

// splitStartLine splits a request or status line into its first two tokens
// and the trimmed remainder. ok is false with fewer than three tokens.
func splitStartLine(line string) (first, second, rest string, ok bool) {
	first, line = nextToken(line)
	second, line = nextToken(line)
	rest = strings.Trim(line, " \t")
	return first, second, rest, first != "" && second != "" && rest != ""
}

// nextToken returns the first space- or tab-delimited token of s and what
// follows it.
func nextToken(s string) (tok, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
