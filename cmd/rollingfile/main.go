// Command rollingfile writes its standard input to a set of rolling files.
//
//	myserver 2>&1 | rollingfile --folder /var/log/myserver --prefix server.log --frequency hourly --max-files 48
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
