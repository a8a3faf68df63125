package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Multipart field names accepted by the upload endpoint
const (
	FieldFile          = "file"
	FieldRecipeID      = "recipeId"
	FieldFileExtension = "fileExtension"
)

// UploadRecipeImage posts an image for a recipe. The server stores it as
// {recipeID}.{extension}.
func (c *Client) UploadRecipeImage(ctx context.Context, recipeID, extension string, content io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(FieldFile, fmt.Sprintf("%s.%s", recipeID, extension))
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	if err := mw.WriteField(FieldRecipeID, recipeID); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.WriteField(FieldFileExtension, extension); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, UploadPath, &body, mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UploadError{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	c.invalidate(recipeID)
	return nil
}
