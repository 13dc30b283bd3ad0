package stations

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/travigo/countdown/pkg/util"
)

type StationRecord struct {
	Code      string  `csv:"code"`
	Name      string  `csv:"name"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}

func ParseStations(in io.Reader) ([]StationRecord, error) {
	// Allow us to ignore those naughty records that have missing columns
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	var records []StationRecord
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		return nil, fmt.Errorf("parse stations csv: %w", err)
	}

	util.InPlaceFilter(&records, func(record StationRecord) bool {
		return record.Code != ""
	})

	return records, nil
}

func ParseStationsFile(path string) ([]StationRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseStations(file)
}
