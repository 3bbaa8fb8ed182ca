package mailintake

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// maxPartDepth bounds recursion into nested multipart bodies
const maxPartDepth = 5

// extractText returns the text/plain content of a message. Nested multipart
// bodies are walked; attachments and HTML parts are skipped.
func extractText(msg *mail.Message) (string, error) {
	return readPart(msg.Body, msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), 0)
}

func readPart(body io.Reader, contentType, encoding string, depth int) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || contentType == "" {
		mediaType = "text/plain"
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		if mediaType != "text/plain" {
			return "", nil
		}
		data, err := io.ReadAll(decodeTransfer(body, encoding))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	boundary, ok := params["boundary"]
	if !ok || depth >= maxPartDepth {
		return "", nil
	}

	var text bytes.Buffer
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if text.Len() > 0 {
				return text.String(), nil
			}
			return "", err
		}

		if disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition")); disposition == "attachment" {
			continue
		}

		// multipart.Reader already strips quoted-printable
		content, err := readPart(part, part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), depth+1)
		if err != nil {
			continue
		}
		if content != "" {
			text.WriteString(content)
			text.WriteString("\n")
		}
	}

	return text.String(), nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	}
	return r
}

// newlineStripper drops line breaks so base64 bodies decode
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	count, err := n.r.Read(p)
	out := p[:0]
	for _, b := range p[:count] {
		if b != '\r' && b != '\n' {
			out = append(out, b)
		}
	}
	return len(out), err
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure
func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
