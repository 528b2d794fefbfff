package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of the first page, matching what a
// human would see as the document's opening content. The pdf library
// panics on some malformed files, so failures are recovered into the
// returned error.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("corrupt PDF: %w", err)
	}
	if reader.NumPage() < 1 {
		return "", nil
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract PDF text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
