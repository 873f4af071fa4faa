package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/apperr"
	"github.com/mtanaka/pricewise/internal/imaging"
)

// AnalyzeReceipt uploads a receipt capture and returns the validated draft
// result. The image is normalized to PNG first so HEIC photos and PDF scans
// work without backend support for those formats.
func (c *Client) AnalyzeReceipt(ctx context.Context, filename string, data []byte) (*analysis.Result, error) {
	contentType := imaging.ContentTypeForFile(filename)
	prepared, mimeType, err := imaging.Prepare(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("preparing receipt image: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadFilename(filename)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(prepared); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/analyzeReceipt", nil, &body, writer.FormDataContentType(), &raw); err != nil {
		return nil, err
	}

	result, err := analysis.ParseResult(raw)
	if err != nil {
		// A syntactically valid body with the wrong shape is still a
		// transport-level failure from the caller's point of view.
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			return nil, &apperr.NetworkError{Op: "POST /analyzeReceipt", Err: err}
		}
		return nil, err
	}
	return result, nil
}

// uploadFilename renames the capture to .png to match the converted payload.
func uploadFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" {
		base = "receipt"
	}
	return base + ".png"
}
