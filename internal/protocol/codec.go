// Package protocol implements the line oriented request/response format
// spoken between clients and the booking server.
//
// A request is one line: a command name followed by whitespace separated
// arguments. A response is always exactly one line.
package protocol

import (
	"errors"
	"strings"
)

const (
	// Delimiter terminates every request and response line.
	Delimiter = '\n'
	// RecordSeparator joins records of a multi-record response.
	// Record payloads must not contain it.
	RecordSeparator = " | "
)

// ErrEmptyRequest is returned for a line that carries no command name.
var ErrEmptyRequest = errors.New("empty request")

type Command struct {
	Name string
	Args []string
}

// Line renders the command back into request form, without the delimiter.
func (c Command) Line() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Decode parses one request line. It does no validation beyond requiring a name.
func Decode(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyRequest
	}
	return Command{
		Name: strings.ToUpper(fields[0]),
		Args: fields[1:],
	}, nil
}

type Status int

const (
	StatusOK Status = iota
	StatusError
)

// Result is what a handler answers. Text is the full line for single-record
// results; Records, when set, are joined with RecordSeparator.
type Result struct {
	Status  Status
	Text    string
	Records []string
}

// Success wraps a raw success line such as "SUCCESS: User registered" or "USER=a,b,1".
func Success(text string) Result {
	return Result{Status: StatusOK, Text: text}
}

// Records builds a multi-record success result.
func Records(records []string) Result {
	return Result{Status: StatusOK, Records: records}
}

// Error builds an "ERROR: <msg>" result.
func Error(msg string) Result {
	return Result{Status: StatusError, Text: "ERROR: " + msg}
}

func (r Result) OK() bool { return r.Status == StatusOK }

// String is the response line without the delimiter.
func (r Result) String() string {
	text := r.Text
	if r.Records != nil {
		text = strings.Join(r.Records, RecordSeparator)
	}
	return singleLine(text)
}

// Encode serializes a result into exactly one delimited line.
func Encode(r Result) []byte {
	s := r.String()
	buf := make([]byte, 0, len(s)+1)
	buf = append(buf, s...)
	return append(buf, Delimiter)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return lineBreaks.Replace(s)
}
