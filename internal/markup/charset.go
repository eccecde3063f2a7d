package markup

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var charsetPattern = regexp.MustCompile(`(?i)charset\s*=\s*["']?([A-Za-z0-9_\-]+)`)

// legacyEncodings maps charset labels seen in emailed Baltic e-receipts to
// their decoders. UTF-8 and unknown labels pass through untouched.
var legacyEncodings = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-13":  charmap.ISO8859_13,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"windows-1257": charmap.Windows1257,
}

// DecodeCharset sniffs the document's declared charset in the first
// kilobyte and transcodes legacy-encoded bodies to UTF-8.
func DecodeCharset(r io.Reader) (io.Reader, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	head := body
	if len(head) > 1024 {
		head = head[:1024]
	}
	m := charsetPattern.FindSubmatch(head)
	if m == nil {
		return bytes.NewReader(body), nil
	}

	enc, ok := legacyEncodings[strings.ToLower(string(m[1]))]
	if !ok {
		return bytes.NewReader(body), nil
	}
	return transform.NewReader(bytes.NewReader(body), enc.NewDecoder()), nil
}
