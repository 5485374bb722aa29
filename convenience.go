// File: structargs/convenience.go
package structargs

// Parse builds the record pointed to by target from args, using target's
// current field values as the defaults. This is the one-call entry point
// for most applications:
//
//	cfg := Config{Port: 8080}
//	if err := structargs.Parse(&cfg, os.Args[1:]); err != nil {
//	    log.Fatal(err)
//	}
func Parse(target any, args []string) error {
	return NewBuilder(target).WithArgs(args).BuildInto(target)
}

// MustParse is like Parse but panics on error.
func MustParse(target any, args []string) {
	NewBuilder(target).WithArgs(args).MustBuildInto(target)
}
