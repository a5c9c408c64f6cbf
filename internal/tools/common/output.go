package common

import (
	"encoding/json"
	"io"
)

type CIResult struct {
	OK       bool     `json:"ok"`
	Title    string   `json:"title"`
	ExitCode int      `json:"exit_code"`
	Details  []string `json:"details,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func PrintCIResult(w io.Writer, title string, details []string, err error, exitCode int) {
	result := CIResult{OK: err == nil, Title: title, ExitCode: exitCode, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
