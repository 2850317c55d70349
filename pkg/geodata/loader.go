package geodata

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// GeoNames TSV column offsets (see download.geonames.org readme).
const (
	colID = iota
	colName
	colASCIIName
	colAlternates
	colLatitude
	colLongitude
	colFeatureClass
	colFeatureCode
	colCountry
	colCC2
	colAdmin1
	colAdmin2
	colAdmin3
	colAdmin4
	colPopulation
)

// Load reads a place dataset from either a GeoNames TSV dump or a binary
// snapshot, picked by file extension. Records below minPopulation are
// dropped; key computes each record's normalized search key.
func Load(path string, minPopulation int64, key KeyFunc) ([]PlaceRecord, error) {
	if filepath.Ext(path) == ".bin" {
		return LoadSnapshot(path)
	}
	return LoadTSV(path, minPopulation, key)
}

// LoadTSV parses a GeoNames tab-separated dump into place records.
func LoadTSV(path string, minPopulation int64, key KeyFunc) ([]PlaceRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	var records []PlaceRecord
	skipped := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 && strings.HasPrefix(line, "id\t") {
			// header row
			continue
		}
		rec, err := parseRow(line, key)
		if err != nil {
			log.Warnf("Skipping dataset line %d: %v", lineNo, err)
			skipped++
			continue
		}
		if rec.Population < minPopulation {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable records", path)
	}

	log.Debugf("Loaded %d places from %s (%d lines skipped)", len(records), path, skipped)
	return records, nil
}

func parseRow(line string, key KeyFunc) (PlaceRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < colPopulation+1 {
		return PlaceRecord{}, fmt.Errorf("expected at least %d columns, got %d", colPopulation+1, len(fields))
	}

	id, err := strconv.Atoi(fields[colID])
	if err != nil {
		return PlaceRecord{}, fmt.Errorf("bad id %q: %w", fields[colID], err)
	}
	name := strings.TrimSpace(fields[colName])
	if name == "" {
		return PlaceRecord{}, fmt.Errorf("record %d has an empty name", id)
	}
	lat, err := strconv.ParseFloat(fields[colLatitude], 64)
	if err != nil {
		return PlaceRecord{}, fmt.Errorf("bad latitude %q: %w", fields[colLatitude], err)
	}
	long, err := strconv.ParseFloat(fields[colLongitude], 64)
	if err != nil {
		return PlaceRecord{}, fmt.Errorf("bad longitude %q: %w", fields[colLongitude], err)
	}
	// Some rows leave population empty; treat as zero rather than rejecting.
	population := int64(0)
	if raw := strings.TrimSpace(fields[colPopulation]); raw != "" {
		population, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return PlaceRecord{}, fmt.Errorf("bad population %q: %w", raw, err)
		}
	}

	country := strings.TrimSpace(fields[colCountry])
	return PlaceRecord{
		ID:         id,
		Name:       name,
		Region:     RegionName(country, strings.TrimSpace(fields[colAdmin1])),
		Country:    country,
		Latitude:   lat,
		Longitude:  long,
		Population: population,
		Key:        key(name),
	}, nil
}
