package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
	Message          *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

// sarifRegion: колонки в SARIF с единицы, в ESTree с нуля.
type sarifRegion struct {
	StartLine   uint32  `json:"startLine,omitempty"`
	StartColumn uint32  `json:"startColumn,omitempty"`
	EndLine     uint32  `json:"endLine,omitempty"`
	EndColumn   uint32  `json:"endColumn,omitempty"`
	CharOffset  *uint32 `json:"charOffset,omitempty"`
	CharLength  *uint32 `json:"charLength,omitempty"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func makeRegion(loc source.Location) *sarifRegion {
	if !loc.HasLines() && !loc.HasSpan() {
		return nil
	}
	r := &sarifRegion{}
	if loc.HasLines() {
		r.StartLine = loc.Start.Line
		r.StartColumn = loc.Start.Column + 1
		r.EndLine = loc.End.Line
		r.EndColumn = loc.End.Column + 1
	}
	if loc.HasSpan() {
		start, length := loc.Span.Start, loc.Span.Len()
		r.CharOffset = &start
		r.CharLength = &length
	}
	return r
}

func makeSarifLocation(path string, loc source.Location, msg string) sarifLocation {
	out := sarifLocation{
		PhysicalLocation: sarifPhysical{
			ArtifactLocation: sarifArtifact{URI: path},
			Region:           makeRegion(loc),
		},
	}
	if msg != "" {
		out.Message = &sarifMessage{Text: msg}
	}
	return out
}

// buildSarif собирает один SARIF run по всем входам. Правила перечисляются
// только для встретившихся кодов, по возрастанию.
func buildSarif(inputs []Input, meta SarifRunMeta) sarifLog {
	used := make(map[diag.Code]struct{})
	for _, in := range inputs {
		for _, d := range in.items() {
			used[d.Code] = struct{}{}
		}
	}
	codes := make([]diag.Code, 0, len(used))
	for c := range used {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	ruleIndex := make(map[diag.Code]int, len(codes))
	rules := make([]sarifRule, len(codes))
	for i, c := range codes {
		ruleIndex[c] = i
		rules[i] = sarifRule{ID: c.ID(), ShortDescription: sarifMessage{Text: c.Title()}}
	}

	results := make([]sarifResult, 0)
	for _, in := range inputs {
		path := in.DisplayPath(meta.PathMode, meta.BaseDir)
		for _, d := range in.items() {
			res := sarifResult{
				RuleID:    d.Code.ID(),
				RuleIndex: ruleIndex[d.Code],
				Level:     sarifLevel(d.Severity),
				Message:   sarifMessage{Text: d.Message},
				Locations: []sarifLocation{makeSarifLocation(path, d.Location, "")},
			}
			for _, n := range d.Notes {
				res.RelatedLocations = append(res.RelatedLocations, makeSarifLocation(path, n.Location, n.Msg))
			}
			results = append(results, res)
		}
	}

	name := meta.ToolName
	if name == "" {
		name = "estcheck"
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           name,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}}
	}
	return sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, inputs []Input, meta SarifRunMeta) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildSarif(inputs, meta))
}
