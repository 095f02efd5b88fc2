package main

import (
	"portalextract/cmd/portalextract/commands"
	"portalextract/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
