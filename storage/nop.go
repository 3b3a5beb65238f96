package storage

import "pngme/models"

// NopHistory is used when HistoryEnabled is off.
type NopHistory struct{}

func (NopHistory) RecordOperation(op *models.Operation) (*models.Operation, error) {
	return op, nil
}

func (NopHistory) ListOperations(string, int) ([]models.Operation, error) {
	return []models.Operation{}, nil
}

func (NopHistory) Close() error {
	return nil
}
