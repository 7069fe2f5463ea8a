package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wols/pkg/wols"
)

// errDocumentInvalid marks failures caused by a record that does not conform
// to the standard, as opposed to operational failures. main maps it to exit
// code 2.
var errDocumentInvalid = errors.New("document failed validation")

// readInput returns the bytes of a document argument: a file path, or stdin
// when the path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readSpecimen reads and parses a specimen document argument. Schema
// failures surface as errDocumentInvalid; unreadable input (bad JSON, wrong
// top-level shape) stays operational.
func readSpecimen(cmd *cobra.Command, path string) (wols.Specimen, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return wols.Specimen{}, err
	}
	s, err := wols.ParseSpecimen(string(data))
	if err != nil {
		switch wols.CodeOf(err) {
		case wols.ErrCodeInvalidJSON, wols.ErrCodeInvalidFormat:
			return wols.Specimen{}, fmt.Errorf("parse %s: %w", displayName(path), err)
		default:
			return wols.Specimen{}, fmt.Errorf("parse %s: %w: %v", displayName(path), errDocumentInvalid, err)
		}
	}
	return s, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

// refuseInvalid converts a failed validation result into the error main maps
// to exit code 2, naming the first accumulated issue.
func refuseInvalid(res wols.ValidationResult) error {
	first := res.Errors[0]
	if first.Path == "" {
		return fmt.Errorf("%w: %s", errDocumentInvalid, first.Message)
	}
	return fmt.Errorf("%w: %s: %s", errDocumentInvalid, first.Path, first.Message)
}

// writeDocument writes data to path, or to the command's stdout when path is
// empty, with a trailing newline either way.
func writeDocument(cmd *cobra.Command, path, data string) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), data)
		return nil
	}
	if err := os.WriteFile(path, []byte(data+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
