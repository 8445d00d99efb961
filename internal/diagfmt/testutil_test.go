package diagfmt

import (
	"estcheck/internal/diag"
	"estcheck/internal/source"
)

func lineLoc(line, col, endLine, endCol uint32) source.Location {
	return source.Location{
		Start: source.Position{Line: line, Column: col},
		End:   source.Position{Line: endLine, Column: endCol},
		Flags: source.HasLines,
	}
}

func spanLoc(start, end uint32) source.Location {
	return source.Location{Span: source.Span{Start: start, End: end}, Flags: source.HasSpan}
}

// sampleInput: один файл с меткой, заметкой и диагностикой без позиции.
func sampleInput(path string) Input {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(`{"type":"Program","body":[]}`))

	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.LblDuplicateLabel, lineLoc(3, 4, 3, 9), "label 'outer' is already declared").
		WithNote(lineLoc(1, 0, 1, 5), "previous declaration"))
	bag.Add(diag.NewError(diag.CtxReturnOutsideFunc, spanLoc(40, 47), "return outside of a function"))
	bag.Add(diag.New(diag.SevWarning, diag.InpShape, source.Location{}, "missing range"))
	bag.Sort()
	return Input{File: fs.Get(id), Bag: bag}
}
