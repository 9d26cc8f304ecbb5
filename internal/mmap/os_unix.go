//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var madvice = map[AccessPattern]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
	AccessWillNeed:   unix.MADV_WILLNEED,
}

func osMap(f *os.File, size int, pattern AccessPattern) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	if advice, ok := madvice[pattern]; ok && pattern != AccessDefault {
		// Hints are best effort; EINVAL only means the kernel ignored it.
		if err := unix.Madvise(data, advice); err != nil && !errors.Is(err, unix.EINVAL) {
			_ = unix.Munmap(data)
			return nil, nil, err
		}
	}
	return data, unix.Munmap, nil
}
