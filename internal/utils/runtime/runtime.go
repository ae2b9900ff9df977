package runtime

// Must panics if err is not nil. Reserved for startup wiring where an
// error means the process is misconfigured beyond recovery.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
