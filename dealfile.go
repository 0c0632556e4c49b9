package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample-deal.yaml
var sampleDealYAML []byte

// LoadDeal reads a deal record from a YAML or JSON file (by extension)
func LoadDeal(filename string) (DealRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return DealRecord{}, fmt.Errorf("reading deal %s: %w", filename, err)
	}
	deal, err := decodeDeal(data, isJSONFile(filename))
	if err != nil {
		return DealRecord{}, fmt.Errorf("parsing deal %s: %w", filename, err)
	}
	return deal, nil
}

// SaveDeal writes a deal record as YAML or JSON (by extension)
func SaveDeal(deal DealRecord, filename string) error {
	var (
		data []byte
		err  error
	)
	if isJSONFile(filename) {
		data, err = json.MarshalIndent(deal, "", "  ")
	} else {
		data, err = yaml.Marshal(deal)
	}
	if err != nil {
		return fmt.Errorf("encoding deal: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing deal %s: %w", filename, err)
	}
	return nil
}

// SampleDeal returns the bundled example deal
func SampleDeal() DealRecord {
	deal, err := decodeDeal(sampleDealYAML, false)
	if err != nil {
		panic(fmt.Sprintf("embedded sample deal is invalid: %v", err))
	}
	return deal
}

func decodeDeal(data []byte, asJSON bool) (DealRecord, error) {
	var deal DealRecord
	var err error
	if asJSON {
		err = json.Unmarshal(data, &deal)
	} else {
		err = yaml.Unmarshal(data, &deal)
	}
	if err != nil {
		return DealRecord{}, err
	}
	deal.ensureIDs()
	return deal, nil
}

func isJSONFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}
