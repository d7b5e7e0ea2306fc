//go:build !mobile

// stub.go - placeholder for non-mobile builds.
//
// The real binding code in mobile.go and viewer.go compiles only with
// -tags mobile; this keeps the package importable everywhere else.
package mobile

// Dummy is an empty exported function so the package builds without the
// mobile tag.
func Dummy() {}
