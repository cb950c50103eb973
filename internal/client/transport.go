package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const (
	acceptEncoding = "gzip, br, zstd"
	acceptLanguage = "es-ES,es;q=0.9,en;q=0.6"
)

// siteTransport wraps an http.RoundTripper to send browser-like headers and
// transparently decode gzip, brotli and zstd response bodies
type siteTransport struct {
	transport http.RoundTripper
	userAgent string
}

func newSiteTransport(base http.RoundTripper, userAgent string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &siteTransport{transport: base, userAgent: userAgent}
}

// RoundTrip fills in missing default headers then decodes the response body
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// HEAD, 204 and 304 carry nothing to decode
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	reader, err := decodeBody(outerEncoding(resp.Header.Get("Content-Encoding")), resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	if reader == nil {
		return resp, nil
	}

	resp.Body = &decodedBody{reader: reader, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true

	return resp, nil
}

// decodeBody returns a decoder for the given encoding, or nil when the body
// should be passed through untouched
func decodeBody(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(body)
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, nil
	}
}

type decodedBody struct {
	reader io.ReadCloser
	raw    io.ReadCloser
}

func (d *decodedBody) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decodedBody) Close() error {
	readerErr := d.reader.Close()
	rawErr := d.raw.Close()
	if readerErr != nil {
		return readerErr
	}
	return rawErr
}

// outerEncoding returns the last listed Content-Encoding, which is the one
// that has to be removed first, lower-cased.
func outerEncoding(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
