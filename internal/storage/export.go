package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Times   Series `json:"times"`
	States  Rows   `json:"states"`
	Inputs  Rows   `json:"inputs"`
	Outputs Rows   `json:"outputs"`
}

func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		RunMetadata: *meta,
		Times:       traj.Times,
		States:      traj.States,
		Inputs:      traj.Inputs,
		Outputs:     traj.Outputs,
	}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
