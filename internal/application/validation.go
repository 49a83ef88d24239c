package application

import (
	"fmt"
	"strings"

	"adda/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "projectID" -> "project ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"projectID":     "project ID",
		"partitionKey":  "partition key",
		"iterationNode": "iteration node",
		"nodeName":      "node name",
		"source":        "source",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateDepth checks a classification fetch depth
func ValidateDepth(depth int) error {
	if depth < 1 {
		return &ValidationError{
			Field:   "depth",
			Message: fmt.Sprintf("depth must be at least 1, got: %d", depth),
		}
	}
	return nil
}

// ValidatePartitionKey checks that a partition key belongs to a known source
func ValidatePartitionKey(partitionKey string) error {
	switch partitionKey {
	case domain.DevOpsProjectPartitionKey, domain.JiraProjectPartitionKey:
		return nil
	default:
		return &ValidationError{
			Field:   "partitionKey",
			Message: fmt.Sprintf("unknown partition key: %s", partitionKey),
		}
	}
}
