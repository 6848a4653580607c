package main

import (
	"os"

	"github.com/opensvc/check-ceph-osd-frag/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
