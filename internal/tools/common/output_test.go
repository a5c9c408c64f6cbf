package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestPrintCIResult(t *testing.T) {
	var buf bytes.Buffer
	PrintCIResult(&buf, "invotrac delete", []string{"id 7"}, errors.New("Delete failed"), 3)

	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OK || got.Title != "invotrac delete" || got.ExitCode != 3 || got.Error != "Delete failed" || len(got.Details) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestPrintCIResultSuccessOmitsError(t *testing.T) {
	var buf bytes.Buffer
	PrintCIResult(&buf, "invotrac doctor", nil, nil, 0)
	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) || bytes.Contains(buf.Bytes(), []byte(`"details"`)) {
		t.Fatalf("expected error and details omitted: %s", buf.String())
	}
}
