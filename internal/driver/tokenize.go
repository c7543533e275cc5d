package driver

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/lexer"
	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize loads path and lexes it. Lexer diagnostics go to the result
// bag; only I/O failures are returned as errors.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lex(file, bag)

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}

// lex returns the token stream of file; EOF is not part of it. Repeated
// lexer reports for the same span collapse into one.
func lex(file *source.File, bag *diag.Bag) []token.Token {
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx.All()
}
