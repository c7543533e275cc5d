package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnterminatedComment Code = 1003
	LexUnterminatedHeredoc Code = 1004

	// sniffs
	SniffInfo          Code = 2000
	SniffFinalClass    Code = 2001
	SniffInternalError Code = 2002

	// I/O
	IOLoadFileError Code = 4001

	// observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		LexInfo:                "Lexical information",
		LexUnknownChar:         "Unknown character",
		LexUnterminatedString:  "Unterminated string literal",
		LexUnterminatedComment: "Unterminated block comment",
		LexUnterminatedHeredoc: "Unterminated heredoc",
		SniffInfo:              "Sniff information",
		SniffFinalClass:        "Class is not declared final",
		SniffInternalError:     "Sniff aborted with an internal error",
		IOLoadFileError:        "I/O load file error",
		ObsInfo:                "Observability information",
		ObsTimings:             "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SNF%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
