package ftpd

import (
	"path"
	"strings"
)

// resolvePath turns a client-supplied argument into an absolute, normalized
// virtual path (always starting with "/", never containing "." or ".."
// components). If arg is relative, it is resolved against cwd. Popping
// past the root clamps at the root instead of erroring, as required by
// the path virtualizer's resolution rules.
func resolvePath(cwd, arg string) string {
	var base string
	if strings.HasPrefix(arg, "/") {
		base = arg
	} else {
		base = cwd + "/" + arg
	}

	segments := strings.Split(base, "/")
	stack := make([]string, 0, len(segments))

	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}

	if len(stack) == 0 {
		return "/"
	}

	return "/" + strings.Join(stack, "/")
}

// toBackendPath maps a virtual path (already normalized by resolvePath) to
// the path to hand to the ClientDriver. The driver is expected to be
// chrooted at a root directory of its own (e.g. via afero.NewBasePathFs),
// so the backend path is the POSIX virtual path unchanged: the host path
// separator is entirely the backend's concern, never the core's.
//
// toBackendPath is a post-condition check, not a user-visible error path:
// resolvePath already clamped any attempt to escape the root, so the
// cleaned result is always rooted at "/".
func toBackendPath(virtualPath string) string {
	cleaned := path.Clean("/" + virtualPath)

	return cleaned
}

// parentOf returns the parent of a normalized virtual path, which is
// always itself normalized. parentOf("/") is "/".
func parentOf(virtualPath string) string {
	if virtualPath == "/" {
		return "/"
	}

	dir, _ := path.Split(virtualPath)
	dir = path.Clean(dir)

	return dir
}
