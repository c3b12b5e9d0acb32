// Package export renders projects and label tracks into plain text, through
// templates so that the output formats stay easy to tweak.
package export

import (
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/aunela/kaiku"
)

// labelsTemplate produces the tab separated label list format most audio
// tools can re-import: start, end and text per row.
const labelsTemplate = `{{range .}}{{printf "%.6f" .At}}	{{printf "%.6f" .At}}	{{.Text}}
{{end}}`

const summaryTemplate = `{{.Title}} ({{.SampleRate}} Hz)
{{range .Groups}}{{printf "%4d" .ID}}  {{.Kind}}  {{printf "%-32s" (trunc 32 .Name)}} {{.Channels}}ch  {{printf "%8.3f" .Seconds}}s  peak {{printf "%.3f" .Peak}}
{{end}}`

var (
	labelsTmpl  = template.Must(template.New("labels").Funcs(sprig.TxtFuncMap()).Parse(labelsTemplate))
	summaryTmpl = template.Must(template.New("summary").Funcs(sprig.TxtFuncMap()).Parse(summaryTemplate))
)

// Labels writes the labels of the track to w, one label per row.
func Labels(w io.Writer, track *kaiku.LabelTrack) error {
	if err := labelsTmpl.Execute(w, track.Labels); err != nil {
		return fmt.Errorf("could not render labels: %w", err)
	}
	return nil
}

type (
	summaryData struct {
		Title      string
		SampleRate int
		Groups     []groupInfo
	}

	groupInfo struct {
		ID       int
		Kind     string
		Name     string
		Channels int
		Seconds  float64
		Peak     float32
	}
)

// Summary writes a one-row-per-track listing of the project to w: identity,
// kind, name, channel count, length and peak level.
func Summary(w io.Writer, project *kaiku.Project) error {
	data := summaryData{Title: project.Title, SampleRate: project.SampleRate}
	if data.Title == "" {
		data.Title = "untitled"
	}
	for t := range project.Tracks.Iterate {
		if !t.IsLeader() {
			continue
		}
		info := groupInfo{ID: int(t.ID()), Name: t.Name(), Channels: t.Channels()}
		switch c := t.(type) {
		case *kaiku.WaveTrack:
			info.Kind = "wave "
			group, _ := project.Tracks.Group(t.ID())
			for _, channel := range group {
				wave := channel.(*kaiku.WaveTrack)
				if s := float64(len(wave.Samples)) / float64(project.SampleRate); s > info.Seconds {
					info.Seconds = s
				}
				if p := wave.Peak(); p > info.Peak {
					info.Peak = p
				}
			}
		case *kaiku.LabelTrack:
			info.Kind = "label"
			if n := len(c.Labels); n > 0 {
				info.Seconds = c.Labels[n-1].At
			}
		default:
			info.Kind = "?    "
		}
		data.Groups = append(data.Groups, info)
	}
	if err := summaryTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("could not render summary: %w", err)
	}
	return nil
}
