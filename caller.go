package emit

import (
	"runtime"
	"strings"
)

var pkgPath = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	slash := strings.LastIndex(name, "/")
	if dot := strings.IndexByte(name[slash+1:], '.'); dot >= 0 {
		return name[:slash+1+dot]
	}
	return name
}()

// isStdlib reports whether fn belongs to a standard library package: their
// import paths have no dot in the first element.
func isStdlib(fn string) bool {
	first := fn
	if i := strings.IndexByte(fn, '/'); i >= 0 {
		first = fn[:i]
	}
	return !strings.Contains(first, ".")
}

// outputSite locates the code responsible for a write: the first frame that
// is neither in this package (tests excepted) nor in the standard library.
// Falls back to the first frame outside this package.
func outputSite() (string, int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var fallbackFile string
	var fallbackLine int
	for {
		f, more := frames.Next()
		ours := strings.HasPrefix(f.Function, pkgPath+".") && !strings.HasSuffix(f.File, "_test.go")
		if !ours {
			if !isStdlib(f.Function) {
				return f.File, f.Line
			}
			if fallbackFile == "" {
				fallbackFile, fallbackLine = f.File, f.Line
			}
		}
		if !more {
			break
		}
	}
	return fallbackFile, fallbackLine
}
