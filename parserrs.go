package calc

import "strconv"

// OperatorError is an error indicating an operator or word that cannot
// appear where it was found. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unexpected "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError reports a close bracket that does not match, or an open
// bracket still unclosed at the end of input. It implements InputError.
type BracketError struct {
	// Col is the position of the close bracket, or of the open bracket if
	// it is unclosed.
	Col int
	// Left is the open bracket, empty for a stray close bracket.
	Left string
	// Right is the close bracket, empty when input ended first.
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return errpos(err.Col, strconv.Quote(err.Right)+" closes nothing")
	case err.Right == "":
		return errpos(err.Col, strconv.Quote(err.Left)+" is never closed")
	}
	return errpos(err.Col, strconv.Quote(err.Right)+" cannot close "+strconv.Quote(err.Left))
}

// Unclosed reports whether the input ended inside brackets, so that more
// input could complete it.
func (err *BracketError) Unclosed() bool {
	return err.Right == ""
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError reports a comma with nothing to separate or a semicolon
// before the end of a line. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	if err.Sep == ";" {
		return errpos(err.Col, `";" may only end a line`)
	}
	return errpos(err.Col, strconv.Quote(err.Sep)+" separates nothing here")
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CommandError is an error indicating a malformed command. It implements
// InputError.
type CommandError struct {
	// Col is the position of the token that could not be understood.
	Col int
	// Command is the command name.
	Command string
	// Want describes what the command expected.
	Want string
}

func (err *CommandError) Error() string {
	return errpos(err.Col, err.Command+" expects "+err.Want)
}

func (err *CommandError) Pos() int {
	return err.Col
}

// EmptyExpressionError reports a missing operand, as in "x = " or "(,)".
type EmptyExpressionError struct {
	// Col is the position of the token found instead of an operand.
	Col int
	// End is that token, empty at the end of input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		return errpos(err.Col, "expected an operand before end of line")
	}
	return errpos(err.Col, "expected an operand before "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CommandError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)
