package parsers

// Parser turns one source file's text into a raw extraction Result.
type Parser interface {
	// ParseSource parses text already read from filePath. Structural failures
	// are returned as *StructuralParseError.
	ParseSource(filePath string, source []byte) (*Result, error)
}

var _ Parser = (*pythonParser)(nil)
