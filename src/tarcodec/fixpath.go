package tarcodec

import (
	"path"
	"strings"
)

// PathMod moves names below BaseDir to ModDir.
type PathMod struct {
	BaseDir string
	ModDir  string
}

// FixPath rewrites orig. Names outside BaseDir are joined below ModDir. A trailing slash survives the rewrite.
func (mod PathMod) FixPath(orig string) string {
	base := strings.TrimSuffix(mod.BaseDir, "/")
	dir := isDirName(orig)
	var fixed string
	switch {
	case orig == base || orig == base+"/":
		fixed = mod.ModDir
	case strings.HasPrefix(orig, base+"/"):
		fixed = path.Join(mod.ModDir, orig[len(base)+1:])
	default:
		fixed = path.Join(mod.ModDir, orig)
	}
	if strings.HasPrefix(mod.ModDir, "./") && !strings.HasPrefix(fixed, "./") && fixed != "." {
		fixed = "./" + fixed
	}
	if dir && !isDirName(fixed) {
		fixed += "/"
	}
	return fixed
}
