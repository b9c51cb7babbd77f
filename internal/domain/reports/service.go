package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	FormatExcel      = "excel"
	FormatPowerPoint = "powerpoint"
	FormatPDF        = "pdf"
)

var formatExtensions = map[string]string{
	FormatExcel:      ".xlsx",
	FormatPowerPoint: ".pptx",
	FormatPDF:        ".pdf",
}

var ErrInvalidFormat = errors.New("invalid report format")

// GenerationError marks a failure while rendering or writing the export
// file. Queries succeeded, so the same request can be retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "report generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Service struct {
	store      *Store
	storageDir string
	baseURL    string
	now        func() time.Time
}

func NewService(store *Store, storageDir, baseURL string) *Service {
	return &Service{
		store:      store,
		storageDir: storageDir,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		now:        time.Now,
	}
}

func (s *Service) validate(req Request) error {
	if !ValidPeriod(req.TimePeriod) {
		return ErrInvalidPeriod
	}
	if !ValidType(req.ReportType) {
		return ErrInvalidType
	}
	return nil
}

// Preview assembles the report data without writing a file.
func (s *Service) Preview(ctx context.Context, req Request) (Preview, error) {
	if err := s.validate(req); err != nil {
		return Preview{}, err
	}
	rows, err := s.store.Rows(ctx, req, s.now())
	if err != nil {
		return Preview{}, err
	}
	preview := Preview{
		GeneratedAt: s.now().UTC(),
		TimePeriod:  req.TimePeriod,
		ReportType:  req.ReportType,
		Summary:     Summarize(rows),
		Rows:        rows,
	}
	if req.TeamID != "" {
		name, err := s.store.TeamName(ctx, req.TeamID)
		if err != nil {
			return Preview{}, err
		}
		preview.TeamName = name
	}
	return preview, nil
}

// Generate renders the requested format into the storage directory and
// returns a download pointer. Rendering failures come back as
// *GenerationError so the transport layer can mark them retryable.
func (s *Service) Generate(ctx context.Context, req Request, format string) (Generated, error) {
	ext, ok := formatExtensions[format]
	if !ok {
		return Generated{}, ErrInvalidFormat
	}
	preview, err := s.Preview(ctx, req)
	if err != nil {
		return Generated{}, err
	}

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return Generated{}, &GenerationError{Err: err}
	}
	fileName := fmt.Sprintf("%s-%s%s", req.ReportType, uuid.NewString(), ext)
	path := filepath.Join(s.storageDir, fileName)

	switch format {
	case FormatExcel:
		err = writeExcel(preview, path)
	case FormatPowerPoint:
		err = writePPTX(preview, path)
	case FormatPDF:
		err = writePDF(preview, path)
	}
	if err != nil {
		os.Remove(path)
		return Generated{}, &GenerationError{Err: err}
	}

	return Generated{
		ReportURL: s.baseURL + "/api/reports/files/" + fileName,
		FileName:  fileName,
	}, nil
}

// FilePath maps a generated file name back to its on-disk location,
// rejecting anything that escapes the storage directory.
func (s *Service) FilePath(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", os.ErrNotExist
	}
	path := filepath.Join(s.storageDir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
