package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"auxesis/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodePopulationSnapshot(s model.PopulationSnapshot) ([]byte, error) {
	s.SchemaVersion = CurrentSchemaVersion
	s.CodecVersion = CurrentCodecVersion
	return json.Marshal(s)
}

func DecodePopulationSnapshot(data []byte) (model.PopulationSnapshot, error) {
	var snapshot model.PopulationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PopulationSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.PopulationSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeExperimentSummary(s model.ExperimentSummary) ([]byte, error) {
	s.SchemaVersion = CurrentSchemaVersion
	s.CodecVersion = CurrentCodecVersion
	return json.Marshal(s)
}

func DecodeExperimentSummary(data []byte) (model.ExperimentSummary, error) {
	var summary model.ExperimentSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.ExperimentSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.ExperimentSummary{}, err
	}
	return summary, nil
}

func encodeJSON(v any) ([]byte, error) { return json.Marshal(v) }

func decodeJSON(data []byte, v any) error { return json.Unmarshal(data, v) }

func checkVersion(r model.VersionedRecord) error {
	if r.SchemaVersion != CurrentSchemaVersion || r.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, r.SchemaVersion, r.CodecVersion)
	}
	return nil
}
