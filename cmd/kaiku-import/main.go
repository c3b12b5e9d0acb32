package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aunela/kaiku"
	"github.com/aunela/kaiku/editor"
	"github.com/aunela/kaiku/export"
	"github.com/aunela/kaiku/smfimport"
	"github.com/aunela/kaiku/version"
)

func main() {
	output := flag.String("o", "", "Project file to write. Defaults to overwriting the input project.")
	trackName := flag.String("n", "Markers", "Name of the imported label track.")
	labelsOut := flag.Bool("t", false, "Also print the imported labels to standard output as tab separated text.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() != 2 || *help {
		flag.Usage()
		os.Exit(0)
	}
	projectPath, midiPath := flag.Arg(0), flag.Arg(1)
	if err := run(projectPath, midiPath, *output, *trackName, *labelsOut); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(projectPath, midiPath, output, trackName string, labelsOut bool) error {
	m := editor.NewModel()
	f, err := os.Open(projectPath)
	if err != nil {
		return fmt.Errorf("could not open project file: %v", err)
	}
	if err := m.ReadProject(f); err != nil {
		return fmt.Errorf("could not load project %v: %v", projectPath, err)
	}
	mid, err := os.Open(midiPath)
	if err != nil {
		return fmt.Errorf("could not open midi file: %v", err)
	}
	defer mid.Close()
	track, err := smfimport.ReadLabels(mid, trackName)
	if err != nil {
		return fmt.Errorf("could not import labels from %v: %v", midiPath, err)
	}
	if labelsOut {
		if err := export.Labels(os.Stdout, track); err != nil {
			return fmt.Errorf("could not print labels: %v", err)
		}
	}
	if err := m.StageNewTracks([]kaiku.Track{track}); err != nil {
		return fmt.Errorf("could not stage the label track: %v", err)
	}
	if _, err := m.CommitPending(); err != nil {
		return fmt.Errorf("could not commit the label track: %v", err)
	}
	if output == "" {
		output = projectPath
	}
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("could not create output file: %v", err)
	}
	if err := m.WriteProject(out); err != nil {
		return fmt.Errorf("could not save project %v: %v", output, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Kaiku command line utility for importing midi markers into a project as a label track.\nUsage: %s [flags] project.yml markers.mid\n", os.Args[0])
	flag.PrintDefaults()
}
