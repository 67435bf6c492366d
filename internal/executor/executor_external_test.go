package executor_test

import (
	"testing"

	language "github.com/hanpama/polygraph/internal/language"
)

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}
