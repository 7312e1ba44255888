// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// logger holds the log file data
var logger struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	fnpath string
	lg     *log.Logger
}

func init() {
	logger.lg = log.New(&logger.buf, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// InitLogFile initialises logger; messages are kept in memory until FlushLog
func InitLogFile(dirout, fnamekey string) (err error) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	err = os.MkdirAll(dirout, 0777)
	if err != nil {
		return chk.Err("cannot create directory for log file:\n%v", err)
	}
	logger.buf.Reset()
	logger.fnpath = filepath.Join(dirout, fnamekey+".log")
	return
}

// LogErr logs error and returns stop flag
func LogErr(err error, msg string) (stop bool) {
	if err == nil {
		return false
	}
	logger.mu.Lock()
	logger.lg.Printf("ERROR: %s : %v\n", msg, err)
	logger.mu.Unlock()
	if io.Verbose {
		io.Pfred("ERROR: %s : %v\n", msg, err)
	}
	return true
}

// LogErrCond logs error message if condition is true and returns stop flag
func LogErrCond(condition bool, msg string, prm ...interface{}) (stop bool) {
	if !condition {
		return false
	}
	return LogErr(chk.Err(msg, prm...), "condition failed")
}

// Log writes an informative message to the log
func Log(msg string, prm ...interface{}) {
	logger.mu.Lock()
	logger.lg.Printf(msg, prm...)
	logger.mu.Unlock()
}

// FlushLog saves log (flushes to disk)
func FlushLog() (err error) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if logger.fnpath == "" {
		return
	}
	err = os.WriteFile(logger.fnpath, logger.buf.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write log file:\n%v", err)
	}
	logger.buf.Reset()
	return
}
