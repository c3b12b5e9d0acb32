package editor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aunela/kaiku"
)

// ReadProject loads a project from the reader, trying json first and yaml
// second, and replaces the current project with it (pushing the old one to
// the undo history). When reading from a file, the model remembers the path
// and considers the project saved.
func (m *Model) ReadProject(r io.ReadCloser) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("could not read project: %w", err)
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("could not close project reader: %w", err)
	}
	var project kaiku.Project
	if errJSON := json.Unmarshal(b, &project); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &project); errYaml != nil {
			return fmt.Errorf("could not unmarshal project file: %v / %v", errYaml, errJSON)
		}
	}
	if err := project.Validate(); err != nil {
		return fmt.Errorf("project file is invalid: %w", err)
	}
	m.SetProject(project)
	if f, ok := r.(*os.File); ok {
		m.d.FilePath = f.Name()
		// the file exists on disk, so the project counts as saved
		m.d.ChangedSinceSave = false
	}
	return nil
}

// WriteProject saves the current project to the writer; .json files as json,
// everything else as yaml. When writing to a file, the model remembers the
// path and considers the project saved.
func (m *Model) WriteProject(w io.WriteCloser) error {
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.Marshal(m.d.Project)
	} else {
		contents, err = yaml.Marshal(m.d.Project)
	}
	if err != nil {
		return fmt.Errorf("could not marshal project: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("could not write project: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close project writer: %w", err)
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
	return nil
}
