package diagfmt

import (
	"estcheck/internal/diag"
	"estcheck/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// Input is the diagnostics of one checked file.
type Input struct {
	// File is nil when the input could not be loaded; Path is used then.
	File *source.File
	Path string
	Bag  *diag.Bag
}

// DisplayPath форматирует путь к файлу в зависимости от режима.
func (in Input) DisplayPath(mode PathMode, baseDir string) string {
	if in.File != nil {
		return in.File.FormatPath(mode.String(), baseDir)
	}
	f := source.File{Path: in.Path}
	return f.FormatPath(mode.String(), baseDir)
}

func (in Input) items() []diag.Diagnostic {
	if in.Bag == nil {
		return nil
	}
	return in.Bag.Items()
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	Width     int // максимальная ширина сообщения, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
	PathMode       PathMode
	BaseDir        string
}
