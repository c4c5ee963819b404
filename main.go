// enumid is a tool designed to be called by go:generate for deriving a
// fieldless companion ID enum from a union type (an interface with a
// closed set of implementing variant types).
//
// See [README] for more documentation
//
// [README]: https://pkg.go.dev/gitlab.com/slatebit/enumid
package main

import (
	"gitlab.com/slatebit/enumid/internal/cmd"
)

func main() {
	cmd.Execute()
}
