// Package utils holds small parsing helpers shared by the extraction and
// reporting layers.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the common defects of model-emitted JSON: missing key
// quotes, single quotes, unclosed brackets, trailing commas, markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse tries progressively more lenient strategies to get model output
// into a struct: standard JSON, then repaired JSON, then HJSON.
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}
	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}
	if err := hjson.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}
	return fmt.Errorf("all parsing strategies failed")
}
