package observability

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys
const (
	attrMethod = "method"
	attrPath   = "path"
	attrStatus = "status"
	attrState  = "state"
	attrOK     = "success"
)

func methodAttr(method string) attribute.KeyValue {
	return attribute.String(attrMethod, method)
}

func pathAttr(path string) attribute.KeyValue {
	return attribute.String(attrPath, normalizePath(path))
}

func statusAttr(code int) attribute.KeyValue {
	// Group status codes to reduce cardinality; 0 = transport failure
	if code == 0 {
		return attribute.String(attrStatus, "transport")
	}
	return attribute.String(attrStatus, fmt.Sprintf("%dxx", code/100))
}

func stateAttr(state string) attribute.KeyValue {
	return attribute.String(attrState, state)
}

func successAttr(success bool) attribute.KeyValue {
	return attribute.Bool(attrOK, success)
}

// normalizePath replaces job IDs with placeholders to reduce cardinality:
// /api/v1/jobs/abc123 -> /api/v1/jobs/{jobId}
// /api/v1/jobs/abc123/download -> /api/v1/jobs/{jobId}/download
func normalizePath(path string) string {
	const prefix = "/api/v1/jobs/"
	if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
		return path
	}
	rest := path[len(prefix):]
	if strings.HasSuffix(rest, "/download") {
		return prefix + "{jobId}/download"
	}
	return prefix + "{jobId}"
}
