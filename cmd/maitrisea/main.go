package main

import (
	"flag"
	"os"

	"k8s.io/klog/v2"

	"github.com/maitrisea/backend/cmd/maitrisea/commands"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	if err := commands.Execute(flag.CommandLine); err != nil {
		os.Exit(1)
	}
}
