//go:build unix

package tarcodec

import (
	"os"
	"syscall"

	"github.com/moby/sys/user"
)

// fileOwner extracts UID and GID from file info on Unix systems.
func fileOwner(fi os.FileInfo) (uid, gid int) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return int(st.Uid), int(st.Gid)
	}
	return 0, 0
}

// ownerNames looks up user and group names. Unknown IDs yield empty names.
func ownerNames(uid, gid int) (uname, gname string) {
	if u, err := user.LookupUid(uid); err == nil {
		uname = u.Name
	}
	if g, err := user.LookupGid(gid); err == nil {
		gname = g.Name
	}
	return uname, gname
}
