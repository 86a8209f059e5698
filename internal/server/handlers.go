package server

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/alertkit/internal/metrics"
	"github.com/ivlev/alertkit/internal/upload"
)

const (
	formField = "image"
	qrSize    = 256

	msgNoFilePart     = "No file part"
	msgNoSelectedFile = "No selected file"
	msgInvalidName    = "Invalid filename"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleIndex(c echo.Context) error {
	var alerts []string
	for _, name := range Alerts {
		if _, err := s.store.Path(name); err == nil {
			alerts = append(alerts, name)
		}
	}

	var buf bytes.Buffer
	data := map[string]any{
		"Title":  "Image upload",
		"Alerts": alerts,
	}
	if err := s.index.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// handleUpload stores the "image" part. Missing parts are reported in a 200
// plain text body, as browsers submitting the form expect.
//
// multipart.Reader cannot tell a file part with an empty filename from a plain
// text field, so any non-file "image" field answers "No selected file" rather
// than "No file part".
func (s *Server) handleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("no_file_part").Inc()
		return c.String(http.StatusOK, msgNoFilePart)
	}

	fh := firstFile(form, formField)
	if fh == nil {
		// A file input submitted without a selection arrives as a plain value.
		if _, ok := form.Value[formField]; ok {
			metrics.UploadsTotal.WithLabelValues("no_selected_file").Inc()
			return c.String(http.StatusOK, msgNoSelectedFile)
		}
		metrics.UploadsTotal.WithLabelValues("no_file_part").Inc()
		return c.String(http.StatusOK, msgNoFilePart)
	}
	if fh.Filename == "" {
		metrics.UploadsTotal.WithLabelValues("no_selected_file").Inc()
		return c.String(http.StatusOK, msgNoSelectedFile)
	}

	f, err := fh.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload").SetInternal(err)
	}
	defer f.Close()

	name, n, err := s.store.Save(fh.Filename, f)
	if errors.Is(err, upload.ErrInvalidName) {
		metrics.UploadsTotal.WithLabelValues("invalid_name").Inc()
		return c.String(http.StatusBadRequest, msgInvalidName)
	}
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload").SetInternal(err)
	}

	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	metrics.UploadBytesTotal.Add(float64(n))
	s.logger.Info("Stored upload", "file", name, "original", fh.Filename, "bytes", n)

	return c.String(http.StatusOK, "Image URL: "+imageURL(c, name))
}

func (s *Server) handleImage(c echo.Context) error {
	path, err := s.store.Path(c.Param("filename"))
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("images", "miss").Inc()
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	metrics.FetchesTotal.WithLabelValues("images", "hit").Inc()
	return c.File(path)
}

// handleQR renders a PNG QR code pointing at the retrieval URL of a stored file.
func (s *Server) handleQR(c echo.Context) error {
	name := c.Param("filename")
	if _, err := s.store.Path(name); err != nil {
		metrics.FetchesTotal.WithLabelValues("qr", "miss").Inc()
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}

	png, err := qrcode.Encode(imageURL(c, name), qrcode.Medium, qrSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render qr code").SetInternal(err)
	}
	metrics.FetchesTotal.WithLabelValues("qr", "hit").Inc()
	return c.Blob(http.StatusOK, "image/png", png)
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func imageURL(c echo.Context, name string) string {
	return c.Scheme() + "://" + c.Request().Host + "/images/" + name
}
