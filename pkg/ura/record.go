package ura

import (
	"strconv"
)

// Record is one decoded line of an instant API response. Position 0 is the response type.
// Every accessor is bounds checked and returns the zero value outside the array.
type Record []any

func (r Record) Len() int {
	return len(r)
}

func (r Record) has(i int) bool {
	return i >= 0 && i < len(r)
}

func (r Record) IsNull(i int) bool {
	return !r.has(i) || r[i] == nil
}

func (r Record) IsNumber(i int) bool {
	if !r.has(i) {
		return false
	}

	_, ok := r[i].(float64)
	return ok
}

func (r Record) String(i int) string {
	if !r.has(i) {
		return ""
	}

	s, _ := r[i].(string)
	return s
}

// Text renders strings as-is and numbers without an exponent, so a DirectionID of 1 reads "1"
func (r Record) Text(i int) string {
	if !r.has(i) {
		return ""
	}

	switch value := r[i].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

func (r Record) Float(i int) float64 {
	if !r.has(i) {
		return 0
	}

	switch value := r[i].(type) {
	case float64:
		return value
	case string:
		f, _ := strconv.ParseFloat(value, 64)
		return f
	default:
		return 0
	}
}

func (r Record) Int(i int) int {
	return int(r.Float(i))
}

// VersionArray is the first line of every response
type VersionArray Record

const versionArrayFields = 3

// ServerTime is the authoritative request time in epoch milliseconds
func (v VersionArray) ServerTime() float64 {
	return Record(v).Float(2)
}
