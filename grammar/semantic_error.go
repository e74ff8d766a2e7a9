package grammar

import "errors"

var (
	semErrNoGrammarName   = errors.New("name is missing")
	semErrUndefinedSym    = errors.New("undefined symbol")
	semErrDuplicateName   = errors.New("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicateAssoc  = errors.New("a terminal symbol cannot have multiple precedences")
	semErrInvalidProdDir  = errors.New("invalid production directive")
	semErrDirInvalidName  = errors.New("invalid directive name")
	semErrDirInvalidParam = errors.New("invalid parameter")
	semErrInvalidTermDecl = errors.New("a terminal declaration must have exactly one alternative containing one pattern or string")
	semErrNoProduction    = errors.New("a grammar needs at least one syntactic production")
)
