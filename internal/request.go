package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

const (
	// MethodCLI is the method of requests dispatched from the command line.
	MethodCLI = "CLI"

	maxBodySize      = 10 << 20
	maxMultipartSize = 32 << 20
)

var localePattern = regexp.MustCompile(`(?i)^[a-z0-9]{2,3}(-[a-z0-9]{4})?(-[a-z0-9]{2,3})?$`)

// Request is the normalized view of one incoming request.
// It is immutable after construction except for the locale and the URI;
// setting the URI re-derives segments, filename and extension.
type Request struct {
	header      http.Header
	query       url.Values
	body        map[string]any
	method      string
	uri         string
	base        string
	locale      string
	filename    string
	extension   string
	remoteIP    string
	rawRemoteIP string
	segments    []string
	secure      bool
}

// NewRequest builds a Request from an HTTP request.
// base is the path prefix the application is mounted under, without slashes.
func NewRequest(r *http.Request, base string) (*Request, error) {
	req := &Request{
		header: r.Header,
		method: r.Method,
		base:   strings.Trim(base, "/"),
		query:  r.URL.Query(),
		secure: isSecure(r),
	}
	req.rawRemoteIP, req.remoteIP = clientIP(r)

	body, err := parseBody(r)
	if err != nil {
		return nil, err
	}
	req.body = body

	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}
	req.SetURI(uri)
	return req, nil
}

// NewCLIRequest builds a Request for command-line dispatch.
// The first argument, if any, is parsed as a query string and merged into
// both the query and the body, like a GET request would carry it.
func NewCLIRequest(uri string, args []string, base string) *Request {
	req := &Request{
		header: make(http.Header),
		method: MethodCLI,
		base:   strings.Trim(base, "/"),
		query:  make(url.Values),
		body:   make(map[string]any),
	}
	if u, err := url.Parse(uri); err == nil {
		req.query = u.Query()
	}
	if len(args) > 0 {
		if extra, err := url.ParseQuery(strings.TrimPrefix(args[0], "?")); err == nil {
			for k, v := range extra {
				req.query[k] = v
				if len(v) > 0 {
					req.body[k] = v[0]
				}
			}
		}
	}
	req.SetURI(uri)
	return req
}

func (r *Request) Method() string { return r.method }

// IsCLI reports whether the request came from the command line.
func (r *Request) IsCLI() bool { return r.method == MethodCLI }

// URI returns the current request URI, including the query string.
func (r *Request) URI() string { return r.uri }

// SetURI replaces the URI and re-derives the path segments, filename and extension.
// A locale prefix found in the new URI replaces the current locale; the locale
// is kept otherwise.
func (r *Request) SetURI(uri string) {
	r.uri = uri
	r.processURI(uri)
}

// Query returns the query string values.
func (r *Request) Query() url.Values { return r.query }

// QueryValue returns the first query value for key.
func (r *Request) QueryValue(key string) string { return r.query.Get(key) }

// Body returns the parsed request body. It is never nil.
func (r *Request) Body() map[string]any { return r.body }

// BodyValue returns a body value by key.
func (r *Request) BodyValue(key string) (any, bool) {
	v, ok := r.body[key]
	return v, ok
}

func (r *Request) Locale() string { return r.locale }

func (r *Request) SetLocale(locale string) { r.locale = locale }

// LocaleTag parses the locale into a language tag.
// Returns language.Und when no locale is set or it is not a valid BCP 47 tag.
func (r *Request) LocaleTag() language.Tag {
	if r.locale == "" {
		return language.Und
	}
	tag, err := language.Parse(r.locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// Segments returns the path segments with base, locale and extension stripped.
// The last segment is always the filename, possibly empty.
func (r *Request) Segments() []string {
	out := make([]string, len(r.segments))
	copy(out, r.segments)
	return out
}

// Path returns the segments joined with "/" and prefixed with "/".
func (r *Request) Path() string {
	return "/" + strings.Join(r.segments, "/")
}

func (r *Request) Filename() string { return r.filename }

// Extension returns the lower-cased file extension, without the dot.
func (r *Request) Extension() string { return r.extension }

// RemoteIP returns the client address, resolved through X-Forwarded-For.
// The value can be spoofed by the client; log RawRemoteIP alongside it.
func (r *Request) RemoteIP() string { return r.remoteIP }

// RawRemoteIP returns the address of the direct peer.
func (r *Request) RawRemoteIP() string { return r.rawRemoteIP }

func (r *Request) IsSecure() bool { return r.secure }

// Header returns the first value of the named header.
func (r *Request) Header(name string) string { return r.header.Get(name) }

func (r *Request) processURI(uri string) {
	if r.base != "" {
		if rest, ok := strings.CutPrefix(uri, "/"+r.base); ok && (rest == "" || strings.ContainsRune("/?#", rune(rest[0]))) {
			uri = rest
		}
	}
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}

	segments := strings.Split(strings.Trim(uri, "/"), "/")
	// Segments holding an encoded slash stay escaped so Path keeps the
	// segment count.
	for i, s := range segments {
		if unescaped, err := url.PathUnescape(s); err == nil && !strings.Contains(unescaped, "/") {
			segments[i] = unescaped
		}
	}

	if len(segments) > 0 && localePattern.MatchString(segments[0]) {
		r.locale = segments[0]
		segments = segments[1:]
	}
	if len(segments) == 0 {
		segments = []string{""}
	}

	last := len(segments) - 1
	r.filename, r.extension = splitFilename(segments[last])
	segments[last] = r.filename
	r.segments = segments
}

// splitFilename splits on the last dot and lower-cases the extension.
func splitFilename(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], strings.ToLower(name[i+1:])
}

func clientIP(r *http.Request) (raw, resolved string) {
	raw = r.RemoteAddr
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	resolved = raw
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			resolved = first
		}
	}
	return raw, resolved
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	_, port, err := net.SplitHostPort(r.Host)
	return err == nil && port == "443"
}

func parseBody(r *http.Request) (map[string]any, error) {
	body := make(map[string]any)
	if r.Body == nil || r.Body == http.NoBody {
		return body, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
			body = decoded
		}
		return body, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
	default:
		if err := r.ParseMultipartForm(maxMultipartSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
	}

	for k, v := range r.PostForm {
		if len(v) > 0 {
			body[k] = v[0]
		}
	}
	return body, nil
}
