package plantcare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	apperrors "botaniq/internal/common/errors"
	"botaniq/internal/common/validation"
)

var (
	ErrFactFileNotFound  = errors.New("FACT_FILE_NOT_FOUND")
	ErrFactDataMalformed = errors.New("FACT_DATA_MALFORMED")
)

// Store loads the plant fact dictionary.
type Store interface {
	Load(ctx context.Context) (Facts, error)
}

// FileStore reads plant_data.json from disk on every Load. There is no
// cache: an edited file is visible to the very next request.
type FileStore struct {
	path           string
	validateSchema bool
}

func NewFileStore(path string, validateSchema bool) *FileStore {
	return &FileStore{path: path, validateSchema: validateSchema}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns a *StandardError with code FACT_FILE_NOT_FOUND,
// FACT_DATA_MALFORMED or UNEXPECTED_ERROR on failure.
func (s *FileStore) Load(ctx context.Context) (Facts, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewFactFileNotFoundError(s.path, fmt.Errorf("%w: %w", ErrFactFileNotFound, err))
		}
		return nil, apperrors.NewUnexpectedError(fmt.Errorf("read %s: %w", s.path, err))
	}

	if s.validateSchema {
		result, err := validation.ValidatePlantData(data)
		if err != nil {
			return nil, apperrors.NewFactDataMalformedError(err.Error(), fmt.Errorf("%w: %w", ErrFactDataMalformed, err))
		}
		if !result.Valid {
			return nil, apperrors.NewFactDataMalformedError(malformedDetails(result), ErrFactDataMalformed)
		}
	}

	var facts Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, apperrors.NewFactDataMalformedError(err.Error(), fmt.Errorf("%w: %w", ErrFactDataMalformed, err))
	}
	if facts == nil {
		// a literal `null` document
		return nil, apperrors.NewFactDataMalformedError("document is null", ErrFactDataMalformed)
	}

	return facts, nil
}

// malformedDetails leads with the offending plant keys. One bad entry
// rejects the whole file.
func malformedDetails(result *validation.ValidationResult) string {
	plants := result.Plants()
	if len(plants) == 0 {
		return result.String()
	}
	return fmt.Sprintf("rejected plants [%s]: %s", strings.Join(plants, ", "), result.String())
}

// Lookup is a plain, case-sensitive lookup of an already-normalized key.
func Lookup(facts Facts, key string) (PlantFact, bool) {
	fact, ok := facts[key]
	return fact, ok
}
