package persistence

import (
	"fmt"

	"github.com/clipline/clipline/pkg/models"
)

// ApplyRowFields applies a partial field map onto a row. Implementations
// share it so the documented field set stays consistent across backends.
func ApplyRowFields(row *models.WorkflowRow, fields map[string]any) error {
	for name, value := range fields {
		switch name {
		case RowFieldStatus:
			s, ok := value.(string)
			if !ok {
				if rs, isStatus := value.(models.RowStatus); isStatus {
					s = string(rs)
				} else {
					return fmt.Errorf("%w: %s must be a string", ErrUnknownRowField, name)
				}
			}

			row.Status = models.RowStatus(s)
		case RowFieldProgress:
			switch v := value.(type) {
			case int:
				row.Progress = v
			case float64: // JSON round-trips numbers as float64
				row.Progress = int(v)
			default:
				return fmt.Errorf("%w: %s must be numeric", ErrUnknownRowField, name)
			}
		case RowFieldVideoRef:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrUnknownRowField, name)
			}

			row.VideoRef = s
		case RowFieldError:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrUnknownRowField, name)
			}

			row.Error = s
		default:
			return fmt.Errorf("%w: %s", ErrUnknownRowField, name)
		}
	}

	return nil
}
