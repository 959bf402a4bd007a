package authkeys

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// File reads entries from an authorized_keys file in batches.
type File struct {
	path string
	fd   *os.File
	m    sync.Mutex
	scan *bufio.Scanner
	line int
	logr *logrus.Logger
}

func NewFile(path string, logr *logrus.Logger) *File {
	return &File{path: path, logr: logr}
}

func (f *File) Open() error {
	f.Close()

	f.m.Lock()
	defer f.m.Unlock()

	fd, err := os.Open(f.path)
	if err != nil {
		return err
	}
	f.fd = fd
	f.line = 0

	scan := bufio.NewScanner(f.fd)
	scan.Buffer(make([]byte, MaxKeyLine), MaxKeyLine)
	f.scan = scan
	return nil
}

func (f *File) Close() {
	f.m.Lock()
	defer f.m.Unlock()
	if f.fd != nil {
		f.fd.Close()
		f.fd = nil
	}
}

// Read returns up to cnt entries; cnt <= 0 reads to the end of the file.
// Lines that do not parse are logged and skipped.
func (f *File) Read(cnt int) ([]*Entry, error) {
	res := []*Entry{}
	f.m.Lock()
	defer f.m.Unlock()
	if f.fd == nil {
		return res, fmt.Errorf("no open file")
	}

	for f.scan.Scan() {
		f.line++
		ent, err := ParseLine(f.scan.Text())
		if err != nil {
			f.logr.Errorf("%s:%d: %v", f.path, f.line, err)
			continue
		}
		if ent == nil {
			continue
		}
		res = append(res, ent)
		if len(res) == cnt {
			return res, nil
		}
	}
	if err := f.scan.Err(); err != nil {
		return res, fmt.Errorf("%s:%d: %w", f.path, f.line, err)
	}
	return res, nil
}

// ReadFile returns every entry in path.
func ReadFile(path string, logr *logrus.Logger) ([]*Entry, error) {
	f := NewFile(path, logr)
	if err := f.Open(); err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Read(0)
}
