package features

const (
	ColumnResumeText         = "resume_text"
	ColumnAcademicBackground = "academic_background"

	DefaultAcademicBackground = "Computer Science"
)

// Assemble reshapes partial into the column layout a model was fit on.
// With a nil expected list the partial vector is returned as is. Otherwise the
// result holds exactly the expected columns in order; columns the extractor did
// not produce are filled with "" for the resume text, the default academic
// background, or 0.
func Assemble(partial Vector, expected []string) Vector {
	if expected == nil {
		return partial
	}

	out := Vector{values: make(map[string]any, len(expected))}
	for _, col := range expected {
		if value, ok := partial.Get(col); ok {
			out.set(col, value)
			continue
		}
		out.set(col, defaultFor(col))
	}
	return out
}

func defaultFor(col string) any {
	switch col {
	case ColumnResumeText:
		return ""
	case ColumnAcademicBackground:
		return DefaultAcademicBackground
	default:
		return 0
	}
}
