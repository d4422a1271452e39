package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	// cd to the repo root so tests share one working directory
	// (log files, sqlite paths). Import for side effect only:
	//
	//   in some_test.go,
	//   import (
	//     _ "simpled.xyz/notification-service/pkg/testing"
	//   )

	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	err := os.Chdir(dir)
	if err != nil {
		panic(err)
	}
}
