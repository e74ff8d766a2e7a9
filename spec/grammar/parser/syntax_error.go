package parser

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	synErrInvalidToken     = newSyntaxError("invalid token")
	synErrNoProduction     = newSyntaxError("a grammar needs at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrNoColon          = newSyntaxError("the colon separating a production name and its alternatives is missing")
	synErrNoSemicolon      = newSyntaxError("the terminating semicolon is missing")
	synErrNoDirectiveName  = newSyntaxError("a directive needs a name")
	synErrUnclosedGroup    = newSyntaxError("a directive group is not closed")
	synErrEmptyPattern     = newSyntaxError("a pattern must not be empty")
	synErrEmptyString      = newSyntaxError("a string must not be empty")
)
