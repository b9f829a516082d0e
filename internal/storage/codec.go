package storage

import (
	"encoding/json"
	"fmt"

	"kiltergen/internal/model"
)

// Version constants stamped onto every persisted record. Bump the schema
// version when a record shape changes, the codec version when the encoding
// itself changes.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// Stamp returns the version header for a freshly written record.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func encodeBoard(record model.BoardRecord) ([]byte, error) {
	record.VersionedRecord = Stamp()
	return json.Marshal(record)
}

func decodeBoard(payload []byte) (model.BoardRecord, error) {
	var record model.BoardRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return model.BoardRecord{}, fmt.Errorf("decode board: %w", err)
	}
	if err := checkVersions(record.VersionedRecord); err != nil {
		return model.BoardRecord{}, err
	}
	return record, nil
}

func encodeSession(session model.Session) ([]byte, error) {
	session.VersionedRecord = Stamp()
	return json.Marshal(session)
}

func decodeSession(payload []byte) (model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if err := checkVersions(session.VersionedRecord); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func encodePopulation(snapshot model.PopulationSnapshot) ([]byte, error) {
	snapshot.VersionedRecord = Stamp()
	return json.Marshal(snapshot)
}

func decodePopulation(payload []byte) (model.PopulationSnapshot, error) {
	var snapshot model.PopulationSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return model.PopulationSnapshot{}, fmt.Errorf("decode population: %w", err)
	}
	if err := checkVersions(snapshot.VersionedRecord); err != nil {
		return model.PopulationSnapshot{}, err
	}
	return snapshot, nil
}

func encodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func decodeFitnessHistory(payload []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, fmt.Errorf("decode fitness history: %w", err)
	}
	return history, nil
}

func encodeDiagnostics(diags []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diags)
}

func decodeDiagnostics(payload []byte) ([]model.GenerationDiagnostics, error) {
	var diags []model.GenerationDiagnostics
	if err := json.Unmarshal(payload, &diags); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diags, nil
}

func checkVersions(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", v.SchemaVersion, CurrentSchemaVersion)
	}
	if v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("unsupported codec version %d (want %d)", v.CodecVersion, CurrentCodecVersion)
	}
	return nil
}
