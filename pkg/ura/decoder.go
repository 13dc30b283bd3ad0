package ura

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const maxLineSize = 1024 * 1024

type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Decoder reads a newline delimited sequence of JSON arrays. The first array is the
// version array, the rest are data arrays read lazily through Next and Record.
// A Decoder can only be read once.
type Decoder struct {
	scanner *bufio.Scanner
	line    int

	versionRead bool
	version     VersionArray
	versionOK   bool

	record    Record
	recordErr error
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Decoder{scanner: scanner}
}

func NewDecoderBytes(body []byte) *Decoder {
	return NewDecoder(bytes.NewReader(body))
}

// Version returns the version array. ok is false when the body is empty, the first line
// is not an array or it does not carry a numeric server time; callers treat that as no update.
func (d *Decoder) Version() (VersionArray, bool) {
	if !d.versionRead {
		d.versionRead = true

		line, ok := d.nextLine()
		if ok {
			record, err := decodeLine(line)
			if err == nil && record.Len() >= versionArrayFields && record.IsNumber(2) {
				d.version = VersionArray(record)
				d.versionOK = true
			}
		}
	}

	return d.version, d.versionOK
}

// Next advances to the next data array
func (d *Decoder) Next() bool {
	d.Version()

	line, ok := d.nextLine()
	if !ok {
		d.record = nil
		d.recordErr = nil
		return false
	}

	record, err := decodeLine(line)
	if err != nil {
		d.record = nil
		d.recordErr = &LineError{Line: d.line, Err: err}
		return true
	}

	d.record = record
	d.recordErr = nil
	return true
}

// Record is the data array at the current position, or the decode error for that line only
func (d *Decoder) Record() (Record, error) {
	return d.record, d.recordErr
}

// Err reports read failures of the underlying reader
func (d *Decoder) Err() error {
	return d.scanner.Err()
}

func (d *Decoder) nextLine() ([]byte, bool) {
	for d.scanner.Scan() {
		d.line++

		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		return line, true
	}

	return nil, false
}

func decodeLine(line []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(line, &record); err != nil {
		return nil, err
	}

	return record, nil
}
