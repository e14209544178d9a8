package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/CTAG07/Drosera/pkg/passgen"
	"github.com/natefinch/atomic"
)

// saveModel writes a model to disk atomically in its flat JSON format.
func saveModel(model *passgen.Model, path string) error {
	var buf bytes.Buffer
	if err := model.Export(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// loadModel reads a flat JSON model file from disk.
func loadModel(path string) (*passgen.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	model := passgen.NewModel()
	if err := model.Import(f); err != nil {
		return nil, err
	}
	return model, nil
}
