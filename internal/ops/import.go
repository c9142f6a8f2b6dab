package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/config"
	"github.com/hpungsan/captrack/internal/errors"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	UserID string
	Path   string
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes a line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importLine decodes both header and record lines.
type importLine struct {
	capacity.CheckIn
	CaptrackExport bool `json:"_captrack_export"`
}

// Import merges check-ins from a JSONL export into the user's stored list.
// Records whose id is already stored are skipped; stored entries win.
// Invalid lines are reported and skipped.
func (s *Store) Import(ctx context.Context, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidRequest("user is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.TrackerError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if info.Size() > MaxImportFileSize {
		return nil, errors.NewFileTooLarge(MaxImportFileSize, info.Size())
	}

	records, lineErrors, err := parseImport(ctx, file)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _, err := s.readAll(ctx, input.UserID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	seen := make(map[string]bool, len(existing)+len(records))
	for _, r := range existing {
		seen[r.ID] = true
	}

	out := &ImportOutput{Errors: lineErrors}
	merged := existing
	for _, r := range records {
		if seen[r.ID] {
			out.Skipped++
			continue
		}
		seen[r.ID] = true
		merged = append(merged, r)
		out.Imported++
	}
	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	if out.Imported == 0 {
		return out, nil
	}

	sortCheckIns(merged)
	if err := s.persist(ctx, input.UserID, merged); err != nil {
		s.metrics.ObservePersistFailure()
		return nil, err
	}
	return out, nil
}

// parseImport reads every line, skipping the header.
func parseImport(ctx context.Context, r io.Reader) ([]capacity.CheckIn, []ImportError, error) {
	var records []capacity.CheckIn
	var lineErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxImportFileSize)
	lineNum := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, nil, errors.NewCancelled("import")
		}
		lineNum++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line importLine
		if err := json.Unmarshal(raw, &line); err != nil {
			lineErrors = append(lineErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if line.CaptrackExport {
			continue
		}
		if err := capacity.ValidateRecord(line.CheckIn); err != nil {
			code := "INVALID_RECORD"
			if te, ok := err.(*errors.TrackerError); ok {
				code = string(te.Code)
			}
			lineErrors = append(lineErrors, ImportError{
				Line:    lineNum,
				ID:      line.ID,
				Code:    code,
				Message: err.Error(),
			})
			continue
		}
		records = append(records, line.CheckIn)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	return records, lineErrors, nil
}
